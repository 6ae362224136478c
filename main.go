package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"campscout/config"
	"campscout/discovery"
	"campscout/httputil"
	"campscout/logging"
	"campscout/models"
	"campscout/notify"
	"campscout/scheduler"
	"campscout/scraper"
	"campscout/services"
	"campscout/storage"
	"campscout/workers"
)

var (
	scrapeNow   = flag.Bool("scrape", false, "Run due scrapes once and exit")
	discoverNow = flag.Bool("discover", false, "Run discovery once and exit")
	notifyNow   = flag.Bool("notify", false, "Run notification fan-out once and exit")
	cmdName     = flag.String("cmd", "", "Queue a command for the running daemon and exit (scrape_now, scrape_source, pause, resume, run_discovery, run_notify, run_media)")
	cmdSource   = flag.String("source", "", "Source ID for -cmd scrape_source")

	// Admin one-shots. All require -as (or the first ADMIN_EMAILS entry) to
	// resolve to an allowlisted operator.
	asEmail     = flag.String("as", "", "Operator email for admin operations")
	ackAlert    = flag.Int64("ack-alert", 0, "Acknowledge a scraper alert by ID and exit")
	approveID   = flag.String("approve", "", "Approve a pending session by ID and exit")
	discardID   = flag.String("discard", "", "Discard a pending session by ID and exit")
	promoteID   = flag.String("promote", "", "Promote the head of a session's waitlist and exit")
	promoteSite = flag.Int64("promote-site", 0, "Promote a discovery candidate to a scrape source and exit")
	rejectSite  = flag.Int64("reject-site", 0, "Reject a discovery candidate and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("daemon.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting campscout...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded %d source seeds", len(cfg.Seeds))

	// Queueing a command only needs the local DB, not Postgres.
	if *cmdName != "" {
		enqueueCommand(cfg, *cmdName, *cmdSource)
		return
	}

	clients := httputil.NewClients(&cfg.Proxy)
	if cfg.Proxy.URL != "" {
		log.Printf("Proxy configured")
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))

	// Services
	mediaService := services.NewMediaService(pgStore)
	importer := services.NewImporter(pgStore, mediaService, cfg.Pipeline.ImportThreshold, time.Now().Year())
	healthService := services.NewHealthService(pgStore, cfg.Pipeline)
	sourceService := services.NewSourceService(pgStore, mediaService, cfg.Pipeline)
	billingService := services.NewBillingService(cfg.Billing)
	registrationService := services.NewRegistrationService(pgStore, billingService)
	reviewService := services.NewReviewService(pgStore, importer)
	log.Println("Services initialized")

	if created, err := sourceService.SyncSeeds(ctx, cfg.Seeds); err != nil {
		log.Printf("Warning: seed sync failed: %v", err)
	} else if created > 0 {
		log.Printf("Registered %d seeded sources", created)
	}

	// SQLite holds the operator command queue
	cmdStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer cmdStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	orchestrator := scraper.NewOrchestrator(cfg, pgStore, clients, importer, healthService)

	searchClient := discovery.NewSearchClient(pgStore, cfg.Search)
	if cfg.Search.BaseURL == "" {
		searchClient = nil
	}
	discoveryService := discovery.NewService(pgStore, sourceService, searchClient, cfg.Discovery)

	mailer := notify.NewMailer(cfg.Smtp)
	notifier := notify.NewNotifier(pgStore, cfg.Pipeline, mailer)

	// One-shot modes
	switch {
	case *scrapeNow:
		log.Println("Running due scrapes...")
		if err := orchestrator.RunDue(ctx, 100); err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		log.Println("Scrape complete!")
		return
	case *discoverNow:
		log.Println("Running discovery...")
		runDiscoveryOnce(ctx, pgStore, discoveryService, cfg.Discovery.Feeds)
		return
	case *notifyNow:
		log.Println("Running notification fan-out...")
		if err := notifier.Run(ctx); err != nil {
			log.Fatalf("Notify failed: %v", err)
		}
		log.Println("Notify complete!")
		return
	case *ackAlert > 0:
		principal := mustAdmin(cfg)
		if err := reviewService.AcknowledgeAlert(ctx, principal, *ackAlert); err != nil {
			log.Fatalf("Acknowledge failed: %v", err)
		}
		log.Printf("Alert %d acknowledged by %s", *ackAlert, principal.Email)
		return
	case *approveID != "":
		principal := mustAdmin(cfg)
		sess, err := reviewService.ApprovePending(ctx, principal, mustUUID(*approveID), nil)
		if err != nil {
			log.Fatalf("Approve failed: %v", err)
		}
		log.Printf("Pending session approved as %s (%s)", sess.ID, sess.Name)
		return
	case *discardID != "":
		principal := mustAdmin(cfg)
		if err := reviewService.DiscardPending(ctx, principal, mustUUID(*discardID)); err != nil {
			log.Fatalf("Discard failed: %v", err)
		}
		log.Println("Pending session discarded")
		return
	case *promoteID != "":
		principal := mustAdmin(cfg)
		reg, err := registrationService.PromoteFromWaitlist(ctx, principal, mustUUID(*promoteID))
		if err != nil {
			log.Fatalf("Promote failed: %v", err)
		}
		log.Printf("Promoted registration %s from the waitlist", reg.ID)
		return
	case *promoteSite > 0:
		mustAdmin(cfg)
		candidate, err := pgStore.GetCandidateSite(ctx, *promoteSite)
		if err != nil || candidate == nil {
			log.Fatalf("Candidate %d not found: %v", *promoteSite, err)
		}
		src, err := discoveryService.Promote(ctx, candidate)
		if err != nil {
			log.Fatalf("Promote failed: %v", err)
		}
		log.Printf("Candidate %s promoted to source %s", candidate.Host, src.ID)
		return
	case *rejectSite > 0:
		mustAdmin(cfg)
		candidate, err := pgStore.GetCandidateSite(ctx, *rejectSite)
		if err != nil || candidate == nil {
			log.Fatalf("Candidate %d not found: %v", *rejectSite, err)
		}
		if err := discoveryService.Reject(ctx, candidate); err != nil {
			log.Fatalf("Reject failed: %v", err)
		}
		log.Printf("Candidate %s rejected", candidate.Host)
		return
	}

	// Daemon mode
	sched := scheduler.New(cfg, orchestrator, pgStore, cmdStore, healthService)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	var uploader workers.Uploader = workers.NoOpUploader{}
	if cfg.Storage.Bucket != "" {
		s3up, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Printf("Warning: S3 uploader unavailable, images will not upload: %v", err)
		} else {
			uploader = s3up
			log.Printf("Object storage: %s", cfg.Storage.Bucket)
		}
	}

	mediaWorker := workers.NewMediaWorker(mediaService, uploader)
	go mediaWorker.Run(ctx, 20, 2*time.Minute)
	log.Println("Media worker started")

	notifierWorker := workers.NewNotifierWorker(notifier)
	go notifierWorker.Run(ctx, 30*time.Minute)
	log.Println("Notifier worker started")

	discoveryWorker := workers.NewDiscoveryWorker(pgStore, discoveryService, cfg.Discovery.Feeds)
	go discoveryWorker.Run(ctx, 7*24*time.Hour)
	log.Println("Discovery worker started")

	regenWorker := workers.NewRegenerationWorker(healthService)
	go regenWorker.Run(ctx, 6*time.Hour)
	log.Println("Regeneration worker started")

	sched.SetWorkers(mediaWorker, notifierWorker, discoveryWorker)

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

func enqueueCommand(cfg *config.Config, name, sourceID string) {
	cmdStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer cmdStore.Close()

	var params *models.CommandParams
	if sourceID != "" {
		params = &models.CommandParams{Source: sourceID}
	}
	if err := cmdStore.EnqueueCommand(models.CommandType(name), params); err != nil {
		log.Fatalf("Failed to queue command: %v", err)
	}
	log.Printf("Queued command: %s", name)
}

// mustAdmin resolves the operator principal for admin one-shots. The email
// comes from -as, defaulting to the first allowlist entry.
func mustAdmin(cfg *config.Config) models.Principal {
	principal, err := adminPrincipal(cfg, *asEmail)
	if err != nil {
		log.Fatalf("Admin check failed: %v", err)
	}
	return principal
}

func adminPrincipal(cfg *config.Config, email string) (models.Principal, error) {
	if email == "" && len(cfg.AdminEmails) > 0 {
		email = cfg.AdminEmails[0]
	}
	for _, allowed := range cfg.AdminEmails {
		if strings.EqualFold(allowed, email) {
			return models.Principal{Email: allowed, Admin: true}, nil
		}
	}
	return models.Principal{}, fmt.Errorf("%q is not on the ADMIN_EMAILS allowlist", email)
}

func mustUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		log.Fatalf("Invalid ID %q: %v", s, err)
	}
	return id
}

func runDiscoveryOnce(ctx context.Context, pgStore *storage.PostgresStore, svc *discovery.Service, feeds map[string][]string) {
	cities, err := pgStore.ListCities(ctx)
	if err != nil {
		log.Fatalf("Failed to list cities: %v", err)
	}
	for i := range cities {
		city := &cities[i]
		sources, err := pgStore.GetSourcesForCity(ctx, city.ID)
		if err != nil {
			log.Printf("Warning: %s: %v", city.Slug, err)
			continue
		}
		seeds := make([]string, 0, len(sources))
		for _, src := range sources {
			seeds = append(seeds, src.URL)
		}
		if err := svc.RunCity(ctx, city, seeds, feeds[city.Slug]); err != nil {
			log.Printf("Warning: discovery for %s: %v", city.Slug, err)
		}
	}
	log.Println("Discovery complete!")
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
