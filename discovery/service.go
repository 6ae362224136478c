package discovery

import (
	"context"
	"log"

	"campscout/config"
	"campscout/models"
	"campscout/services"
	"campscout/storage"
)

// Service runs all discovery channels for a city and promotes reviewed
// candidates into scrape sources.
type Service struct {
	store   *storage.PostgresStore
	sources *services.SourceService
	crawler *Crawler
	feeds   *FeedScanner
	search  *SearchClient
	cfg     config.DiscoveryConfig
}

func NewService(store *storage.PostgresStore, sources *services.SourceService, search *SearchClient, cfg config.DiscoveryConfig) *Service {
	return &Service{
		store:   store,
		sources: sources,
		crawler: NewCrawler(store, cfg),
		feeds:   NewFeedScanner(store),
		search:  search,
		cfg:     cfg,
	}
}

// RunCity executes every discovery channel for one city. Seed URLs come
// from the city's existing sources; channel failures are logged, not fatal.
func (s *Service) RunCity(ctx context.Context, city *models.City, seedURLs, feedURLs []string) error {
	total := 0

	n, err := s.crawler.CrawlCity(ctx, city, seedURLs)
	if err != nil {
		log.Printf("Warning: crawl discovery for %s: %v", city.Slug, err)
	}
	total += n

	n, err = s.feeds.ScanFeeds(ctx, city, feedURLs)
	if err != nil {
		log.Printf("Warning: feed discovery for %s: %v", city.Slug, err)
	}
	total += n

	if s.search != nil {
		n, err = s.search.SearchCity(ctx, city)
		if err != nil {
			log.Printf("Warning: search discovery for %s: %v", city.Slug, err)
		}
		total += n
	}

	log.Printf("Discovery for %s: %d new candidates", city.Slug, total)
	return nil
}

// Promote turns a reviewed candidate into an orphan scrape source. The
// source starts inactive with no extraction method; the regeneration sweep
// files the dev request to build one.
func (s *Service) Promote(ctx context.Context, candidate *models.CandidateSite) (*models.ScrapeSource, error) {
	src := &models.ScrapeSource{
		URL:          candidate.URL,
		Name:         candidate.Title,
		CityID:       candidate.CityID,
		DiscoveredBy: candidate.FoundVia,
	}
	err := s.sources.Register(ctx, src)
	if err == storage.ErrDuplicate {
		// Register normalized the URL in place, so the lookup matches
		// whatever row collided.
		existing, lookupErr := s.store.GetSourceByURL(ctx, src.URL)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			src = existing
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.store.ResolveCandidateSite(ctx, candidate.ID, models.CandidateStatusPromoted); err != nil {
		return nil, err
	}
	return src, nil
}

// Reject marks a candidate as not a camp provider.
func (s *Service) Reject(ctx context.Context, candidate *models.CandidateSite) error {
	return s.store.ResolveCandidateSite(ctx, candidate.ID, models.CandidateStatusRejected)
}
