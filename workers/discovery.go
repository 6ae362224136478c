package workers

import (
	"context"
	"log"
	"time"

	"campscout/discovery"
	"campscout/models"
	"campscout/storage"
)

// DiscoveryWorker runs site discovery per city on a slow cadence. Seed URLs
// are the city's existing source URLs; discovery looks outward from there.
type DiscoveryWorker struct {
	store     *storage.PostgresStore
	service   *discovery.Service
	feedURLs  map[string][]string // city slug -> feeds
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewDiscoveryWorker(store *storage.PostgresStore, service *discovery.Service, feedURLs map[string][]string) *DiscoveryWorker {
	return &DiscoveryWorker{
		store:     store,
		service:   service,
		feedURLs:  feedURLs,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *DiscoveryWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *DiscoveryWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *DiscoveryWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Discovery worker stopping")
			return
		case <-ticker.C:
			w.runAllCities(ctx)
		case <-w.triggerCh:
			log.Println("Discovery worker triggered manually")
			w.runAllCities(ctx)
		}
	}
}

func (w *DiscoveryWorker) runAllCities(ctx context.Context) {
	cities, err := w.store.ListCities(ctx)
	if err != nil {
		log.Printf("Discovery: failed to list cities: %v", err)
		return
	}

	for i := range cities {
		if ctx.Err() != nil {
			return
		}
		w.RunCity(ctx, &cities[i])
	}
}

// RunCity runs discovery for a single city.
func (w *DiscoveryWorker) RunCity(ctx context.Context, city *models.City) {
	seeds, err := w.seedURLsFor(ctx, city)
	if err != nil {
		log.Printf("Discovery: failed to collect seeds for %s: %v", city.Slug, err)
		return
	}

	if err := w.service.RunCity(ctx, city, seeds, w.feedURLs[city.Slug]); err != nil {
		log.Printf("Discovery: %s: %v", city.Slug, err)
		w.logFunc(models.LogLevelError, "discovery", err.Error())
	}
}

func (w *DiscoveryWorker) seedURLsFor(ctx context.Context, city *models.City) ([]string, error) {
	sources, err := w.store.GetSourcesForCity(ctx, city.ID)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(sources))
	for _, src := range sources {
		urls = append(urls, src.URL)
	}
	return urls, nil
}
