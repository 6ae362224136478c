package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"campscout/config"
	"campscout/models"
	"campscout/scraper"
	"campscout/services"
	"campscout/storage"
)

// Triggerable allows workers to be triggered manually
type Triggerable interface {
	Trigger()
}

type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	pgStore      *storage.PostgresStore
	cmdStore     *storage.SQLiteStore
	health       *services.HealthService
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}

	mediaWorker     Triggerable
	notifierWorker  Triggerable
	discoveryWorker Triggerable
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator, pgStore *storage.PostgresStore, cmdStore *storage.SQLiteStore, health *services.HealthService) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		pgStore:      pgStore,
		cmdStore:     cmdStore,
		health:       health,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

// SetWorkers registers background workers for manual triggering
func (s *Scheduler) SetWorkers(media, notifier, discovery Triggerable) {
	s.mediaWorker = media
	s.notifierWorker = notifier
	s.discoveryWorker = discovery
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)
	go s.pollTasks(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			if err := s.orchestrator.RunDue(ctx, 20); err != nil {
				log.Printf("Scheduled run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if err := s.orchestrator.RunDue(ctx, 20); err != nil {
						log.Printf("Scheduled run error: %v", err)
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.cmdStore.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.cmdStore.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdScrapeNow:
		return s.orchestrator.RunDue(ctx, 20)
	case models.CmdScrapeSource:
		params, err := s.cmdStore.ParseCommandParams(cmd)
		if err != nil {
			return err
		}
		sourceID, err := uuid.Parse(params.Source)
		if err != nil {
			return fmt.Errorf("invalid source id %q: %w", params.Source, err)
		}
		return s.orchestrator.RunSourceByID(ctx, sourceID)
	case models.CmdPause:
		s.orchestrator.Pause()
		log.Println("Scraping paused via command")
		return nil
	case models.CmdResume:
		s.orchestrator.Resume()
		log.Println("Scraping resumed via command")
		return nil
	case models.CmdRunDiscovery:
		if s.discoveryWorker != nil {
			s.discoveryWorker.Trigger()
			log.Println("Discovery worker triggered via command")
		}
		return nil
	case models.CmdRunNotify:
		if s.notifierWorker != nil {
			s.notifierWorker.Trigger()
			log.Println("Notifier worker triggered via command")
		}
		return nil
	case models.CmdRunMedia:
		if s.mediaWorker != nil {
			s.mediaWorker.Trigger()
			log.Println("Media worker triggered via command")
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}

// pollTasks claims due scheduled tasks and dispatches them. Tasks are the
// durable form of delayed work, so a restart between scheduling and
// execution loses nothing.
func (s *Scheduler) pollTasks(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tasks, err := s.pgStore.ClaimDueTasks(ctx, 10)
			if err != nil {
				log.Printf("Error claiming tasks: %v", err)
				continue
			}

			for _, task := range tasks {
				if err := s.handleTask(ctx, &task); err != nil {
					log.Printf("Task %d (%s) error: %v", task.ID, task.Kind, err)
					if failErr := s.pgStore.FailTask(ctx, task.ID, err.Error(), 5*time.Minute, 3); failErr != nil {
						log.Printf("Error failing task %d: %v", task.ID, failErr)
					}
					continue
				}
				if err := s.pgStore.CompleteTask(ctx, task.ID); err != nil {
					log.Printf("Error completing task %d: %v", task.ID, err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

type taskPayload struct {
	SourceID string `json:"source_id,omitempty"`
}

func (s *Scheduler) handleTask(ctx context.Context, task *models.ScheduledTask) error {
	var payload taskPayload
	if len(task.Payload) > 0 {
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}

	switch task.Kind {
	case models.TaskScrapeSource:
		sourceID, err := uuid.Parse(payload.SourceID)
		if err != nil {
			return fmt.Errorf("invalid source id %q: %w", payload.SourceID, err)
		}
		return s.orchestrator.RunSourceByID(ctx, sourceID)
	case models.TaskRefreshQuality:
		sourceID, err := uuid.Parse(payload.SourceID)
		if err != nil {
			return fmt.Errorf("invalid source id %q: %w", payload.SourceID, err)
		}
		source, err := s.pgStore.GetSource(ctx, sourceID)
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("unknown source %s", sourceID)
		}
		return s.health.RefreshQuality(ctx, source)
	case models.TaskSendDigest:
		if s.notifierWorker != nil {
			s.notifierWorker.Trigger()
		}
		return nil
	default:
		return fmt.Errorf("unknown task kind: %s", task.Kind)
	}
}
