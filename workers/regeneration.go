package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"campscout/models"
	"campscout/services"
)

// RegenerationWorker periodically files dev requests for sources needing a
// scraper and expires stale requests.
type RegenerationWorker struct {
	health    *services.HealthService
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewRegenerationWorker(health *services.HealthService) *RegenerationWorker {
	return &RegenerationWorker{
		health:    health,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *RegenerationWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *RegenerationWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *RegenerationWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Regeneration worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.triggerCh:
			log.Println("Regeneration worker triggered manually")
			w.sweep(ctx)
		}
	}
}

func (w *RegenerationWorker) sweep(ctx context.Context) {
	filed, err := w.health.SweepRegeneration(ctx)
	if err != nil {
		log.Printf("Regeneration: sweep error: %v", err)
		return
	}
	if filed > 0 {
		log.Printf("Regeneration: filed %d dev requests", filed)
		w.logFunc(models.LogLevelInfo, "regeneration", fmt.Sprintf("filed %d dev requests", filed))
	}

	expired, err := w.health.SweepStaleDevRequests(ctx)
	if err != nil {
		log.Printf("Regeneration: stale sweep error: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Regeneration: expired %d stale dev requests", expired)
		w.logFunc(models.LogLevelWarn, "regeneration", fmt.Sprintf("expired %d stale dev requests", expired))
	}
}
