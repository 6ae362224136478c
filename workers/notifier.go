package workers

import (
	"context"
	"log"
	"time"

	"campscout/models"
	"campscout/notify"
)

// NotifierWorker runs the notification fan-out on an interval.
type NotifierWorker struct {
	notifier  *notify.Notifier
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewNotifierWorker(notifier *notify.Notifier) *NotifierWorker {
	return &NotifierWorker{
		notifier:  notifier,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *NotifierWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *NotifierWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *NotifierWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notifier worker stopping")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.triggerCh:
			log.Println("Notifier worker triggered manually")
			w.runOnce(ctx)
		}
	}
}

func (w *NotifierWorker) runOnce(ctx context.Context) {
	if err := w.notifier.Run(ctx); err != nil {
		log.Printf("Notifier: run error: %v", err)
		w.logFunc(models.LogLevelError, "notifier", err.Error())
	}
}
