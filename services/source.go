package services

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"campscout/config"
	"campscout/models"
	"campscout/storage"
)

// SourceService manages the scrape source registry.
type SourceService struct {
	store *storage.PostgresStore
	media *MediaService
	cfg   config.PipelineConfig
}

func NewSourceService(store *storage.PostgresStore, media *MediaService, cfg config.PipelineConfig) *SourceService {
	return &SourceService{store: store, media: media, cfg: cfg}
}

// Register adds a new source. New sources start inactive without a method;
// they enter rotation once a scraper exists and quality clears the bar.
func (s *SourceService) Register(ctx context.Context, src *models.ScrapeSource) error {
	normalized, err := normalizeSourceURL(src.URL)
	if err != nil {
		return err
	}
	src.URL = normalized

	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	if src.CadenceHours <= 0 {
		src.CadenceHours = s.cfg.DefaultCadenceHours
	}
	if src.DiscoveredBy == "" {
		src.DiscoveredBy = "manual"
	}
	src.Active = src.Active && src.CanActivate()
	now := time.Now()
	src.CreatedAt = now
	src.UpdatedAt = now

	return s.store.CreateSource(ctx, src)
}

// SetMethod installs or replaces a source's extraction method and clears
// any regeneration flag. A scrape task is queued to run shortly so a fresh
// scraper is exercised before its regular cadence.
func (s *SourceService) SetMethod(ctx context.Context, id uuid.UUID, method *models.ExtractionMethod) error {
	if method.IsZero() {
		return ErrNoExtractionMethod
	}
	if err := s.store.SetSourceMethod(ctx, id, method); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"source_id": id.String()})
	if err != nil {
		return err
	}
	task := &models.ScheduledTask{
		Kind:      models.TaskScrapeSource,
		Payload:   payload,
		RunAt:     time.Now().Add(time.Minute),
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateScheduledTask(ctx, task); err != nil {
		log.Printf("Warning: could not queue verification scrape for %s: %v", id, err)
	}
	return nil
}

// Activate turns a source on. Refused when no extraction method exists,
// since an active source without a scraper would fail every run.
func (s *SourceService) Activate(ctx context.Context, id uuid.UUID) error {
	src, err := s.store.GetSource(ctx, id)
	if err != nil {
		return err
	}
	if src == nil {
		return ErrNotFound
	}
	if !src.CanActivate() {
		return ErrNoExtractionMethod
	}
	return s.store.SetSourceActive(ctx, id, true)
}

func (s *SourceService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.store.SetSourceActive(ctx, id, false)
}

// SyncSeeds imports YAML-seeded sources, skipping URLs already registered.
// Seeds shipping a method are activated immediately.
func (s *SourceService) SyncSeeds(ctx context.Context, seeds map[string]*config.SourceSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		city, err := s.store.GetCityBySlug(ctx, seed.City)
		if err != nil {
			return created, err
		}
		if city == nil {
			log.Printf("Warning: seed %s references unknown city %q, skipped", seed.URL, seed.City)
			continue
		}

		src := &models.ScrapeSource{
			URL:          seed.URL,
			Name:         seed.Name,
			CityID:       city.ID,
			Method:       seed.Method,
			CadenceHours: seed.CadenceHours,
			Active:       !seed.Method.IsZero(),
			DiscoveredBy: "manual",
		}
		err = s.Register(ctx, src)
		if err == storage.ErrDuplicate {
			continue
		}
		if err != nil {
			return created, err
		}
		created++

		if seed.LogoURL != "" && s.media != nil {
			if err := s.media.EnqueueLogo(ctx, seed.LogoURL); err != nil {
				log.Printf("Warning: failed to enqueue logo for %s: %v", seed.URL, err)
			}
		}
	}
	return created, nil
}

// normalizeSourceURL canonicalizes a source URL so duplicates with trailing
// slashes or mixed-case hosts collapse to one registry entry.
func normalizeSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrValidation
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}
