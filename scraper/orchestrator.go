package scraper

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"campscout/config"
	"campscout/httputil"
	"campscout/models"
	"campscout/services"
	"campscout/storage"
)

// Orchestrator owns the scrape job lifecycle: claim, extract, import,
// health bookkeeping, rescheduling.
type Orchestrator struct {
	cfg      *config.Config
	store    *storage.PostgresStore
	clients  *httputil.Clients
	importer *services.Importer
	health   *services.HealthService

	// paused is flipped by the command poller while RunDue fires from the
	// cron goroutine.
	paused atomic.Bool
}

func NewOrchestrator(cfg *config.Config, store *storage.PostgresStore, clients *httputil.Clients, importer *services.Importer, health *services.HealthService) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		clients:  clients,
		importer: importer,
		health:   health,
	}
}

func (o *Orchestrator) Pause()  { o.paused.Store(true) }
func (o *Orchestrator) Resume() { o.paused.Store(false) }

// RunDue scrapes every source whose next_due_at has passed. Per-source
// failures are recorded against the source, never aborting the batch.
func (o *Orchestrator) RunDue(ctx context.Context, limit int) error {
	if o.paused.Load() {
		log.Println("Scraping is paused, skipping run")
		return nil
	}

	sources, err := o.store.GetDueSources(ctx, limit)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return nil
	}
	log.Printf("Scraping %d due sources", len(sources))

	for i := range sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.RunSource(ctx, &sources[i]); err != nil {
			log.Printf("Error scraping source %s: %v", sources[i].URL, err)
		}
	}
	return nil
}

// RunSourceByID looks a source up and scrapes it once, regardless of its
// schedule. Used by one-shot invocations and queued commands.
func (o *Orchestrator) RunSourceByID(ctx context.Context, id uuid.UUID) error {
	source, err := o.store.GetSource(ctx, id)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("unknown source %s", id)
	}
	return o.RunSource(ctx, source)
}

func (o *Orchestrator) RunSource(ctx context.Context, source *models.ScrapeSource) error {
	job := &models.ScrapeJob{SourceID: source.ID, CreatedAt: time.Now()}
	err := o.store.CreateJob(ctx, job)
	if err == storage.ErrJobExists {
		log.Printf("Source %s already has a job in flight, skipping", source.URL)
		return nil
	}
	if err != nil {
		return err
	}

	if err := o.store.MarkJobRunning(ctx, job.ID, time.Now()); err != nil {
		return err
	}
	job.Status = models.JobStatusRunning
	o.logJob(ctx, job, models.LogLevelInfo, fmt.Sprintf("Starting scrape for %s", source.URL))

	runErr := o.execute(ctx, source, job)

	now := time.Now()
	job.FinishedAt = &now
	if runErr != nil {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = runErr.Error()
		o.logJob(ctx, job, models.LogLevelError, runErr.Error())
	} else {
		job.Status = models.JobStatusCompleted
		o.logJob(ctx, job, models.LogLevelInfo, fmt.Sprintf(
			"Scrape complete: %d found, %d created, %d updated, %d pending",
			job.SessionsFound, job.SessionsCreated, job.SessionsUpdated, job.PendingCreated))
	}
	if err := o.store.FinishJob(ctx, job); err != nil {
		log.Printf("Warning: failed to finish job %d: %v", job.ID, err)
	}

	if err := o.health.RecordOutcome(ctx, source, runErr == nil, runErr); err != nil {
		log.Printf("Warning: failed to record health for %s: %v", source.URL, err)
	}
	if runErr == nil {
		if err := o.health.RefreshQuality(ctx, source); err != nil {
			log.Printf("Warning: failed to refresh quality for %s: %v", source.URL, err)
		}
	}

	nextDue := time.Now().Add(time.Duration(source.CadenceHours) * time.Hour)
	if err := o.store.SetSourceNextDue(ctx, source.ID, nextDue); err != nil {
		log.Printf("Warning: failed to reschedule %s: %v", source.URL, err)
	}

	if runErr == nil && job.SessionsCreated+job.SessionsUpdated > 0 {
		o.scheduleDigest(ctx)
	}
	return runErr
}

// scheduleDigest queues a digest send a few minutes out. Batching behind a
// delay lets one notification cover every source scraped in the same wave.
func (o *Orchestrator) scheduleDigest(ctx context.Context) {
	task := &models.ScheduledTask{
		Kind:      models.TaskSendDigest,
		RunAt:     time.Now().Add(10 * time.Minute),
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now(),
	}
	if err := o.store.CreateScheduledTask(ctx, task); err != nil {
		log.Printf("Warning: failed to schedule digest send: %v", err)
	}
}

// execute performs extraction and import for one running job. Extraction
// happens entirely before any write, so a mid-scrape failure leaves the
// previous import untouched.
func (o *Orchestrator) execute(ctx context.Context, source *models.ScrapeSource, job *models.ScrapeJob) error {
	extractor, err := NewExtractor(source, o.clients, o.cfg.Render)
	if err != nil {
		return err
	}

	raws, err := extractor.Extract(ctx, source)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	stats := &services.ImportStats{}
	seen := make(map[uuid.UUID]bool, len(raws))
	for i := range raws {
		if err := o.importer.ProcessRaw(ctx, source, job.ID, &raws[i], seen, stats); err != nil {
			return fmt.Errorf("import %q: %w", raws[i].Name, err)
		}
	}

	if err := o.importer.FinishImport(ctx, source, job.ID, seen, stats); err != nil {
		return fmt.Errorf("removal detection: %w", err)
	}

	job.SessionsFound = stats.Found
	job.SessionsCreated = stats.Created
	job.SessionsUpdated = stats.Updated
	job.PendingCreated = stats.Pending
	return nil
}

func (o *Orchestrator) logJob(ctx context.Context, job *models.ScrapeJob, level models.LogLevel, msg string) {
	entry := &models.ScrapeLog{
		JobID:     &job.ID,
		SourceID:  &job.SourceID,
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
	}
	if err := o.store.CreateScrapeLog(ctx, entry); err != nil {
		log.Printf("Warning: failed to write scrape log: %v", err)
	}
}
