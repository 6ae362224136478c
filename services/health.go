package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campscout/config"
	"campscout/models"
	"campscout/storage"
)

// HealthService applies run outcomes to source health and drives the
// degraded / regenerate / disable escalation ladder.
type HealthService struct {
	store *storage.PostgresStore
	cfg   config.PipelineConfig
}

func NewHealthService(store *storage.PostgresStore, cfg config.PipelineConfig) *HealthService {
	return &HealthService{store: store, cfg: cfg}
}

// ApplyOutcome returns the health record as it should read after one run.
// A success resets the failure streak to zero; a failure extends it by one.
func ApplyOutcome(health models.ScraperHealth, succeeded bool, runErr error, now time.Time) models.ScraperHealth {
	health.TotalRuns++
	health.LastRunAt = &now

	if succeeded {
		health.SuccessfulRuns++
		health.ConsecutiveFailures = 0
		health.LastError = ""
	} else {
		health.ConsecutiveFailures++
		if runErr != nil {
			health.LastError = runErr.Error()
		}
	}
	health.SuccessRate = float64(health.SuccessfulRuns) / float64(health.TotalRuns)
	return health
}

// EscalationAction is the single step the ladder takes at a given failure
// count.
type EscalationAction int

const (
	EscalateNone EscalationAction = iota
	EscalateDegraded
	EscalateRegenerate
	EscalateDisable
)

// EscalationFor maps a consecutive-failure count to the action due at that
// count. Actions fire only at exact threshold crossings, so repeated
// failures past a threshold do not re-alert.
func EscalationFor(failures int, cfg config.PipelineConfig) EscalationAction {
	switch failures {
	case cfg.DegradedFailures:
		return EscalateDegraded
	case cfg.RegenerateFailures:
		return EscalateRegenerate
	case cfg.DisableFailures:
		return EscalateDisable
	}
	return EscalateNone
}

// RecordOutcome updates a source's health counters after a job finishes and
// fires any escalation due at the new failure count.
func (h *HealthService) RecordOutcome(ctx context.Context, source *models.ScrapeSource, succeeded bool, runErr error) error {
	health := ApplyOutcome(source.Health, succeeded, runErr, time.Now())

	if err := h.store.UpdateSourceHealth(ctx, source.ID, &health); err != nil {
		return err
	}
	source.Health = health

	if succeeded {
		return nil
	}
	return h.escalate(ctx, source, health.ConsecutiveFailures)
}

func (h *HealthService) escalate(ctx context.Context, source *models.ScrapeSource, failures int) error {
	switch EscalationFor(failures, h.cfg) {
	case EscalateDegraded:
		return h.alert(ctx, source.ID, models.AlertSourceDegraded, models.SeverityWarning,
			fmt.Sprintf("source %s has failed %d consecutive scrapes", source.URL, failures))

	case EscalateRegenerate:
		health := source.Health
		health.NeedsRegeneration = true
		if err := h.store.UpdateSourceHealth(ctx, source.ID, &health); err != nil {
			return err
		}
		source.Health = health
		return h.alert(ctx, source.ID, models.AlertNeedsRegeneration, models.SeverityError,
			fmt.Sprintf("source %s flagged for scraper regeneration after %d consecutive failures", source.URL, failures))

	case EscalateDisable:
		if err := h.store.SetSourceActive(ctx, source.ID, false); err != nil {
			return err
		}
		source.Active = false
		return h.alert(ctx, source.ID, models.AlertSourceDisabled, models.SeverityCritical,
			fmt.Sprintf("source %s disabled after %d consecutive failures", source.URL, failures))
	}
	return nil
}

func (h *HealthService) alert(ctx context.Context, sourceID uuid.UUID, kind models.AlertKind, sev models.AlertSeverity, msg string) error {
	return h.store.CreateAlert(ctx, &models.ScraperAlert{
		SourceID:  &sourceID,
		Kind:      kind,
		Severity:  sev,
		Message:   msg,
		CreatedAt: time.Now(),
	})
}

// SweepRegeneration files dev requests for sources that need a scraper
// built or rebuilt, capped per sweep. Sources already covered by an open
// request are excluded at the query level.
func (h *HealthService) SweepRegeneration(ctx context.Context) (int, error) {
	sources, err := h.store.GetSourcesNeedingScraper(ctx, h.cfg.DevRequestCap)
	if err != nil {
		return 0, err
	}

	filed := 0
	for i := range sources {
		src := &sources[i]
		kind := models.DevRequestNewScraper
		priority := 1
		if src.Health.NeedsRegeneration {
			kind = models.DevRequestRegeneration
			priority = 2
		}

		req := &models.DevRequest{
			SourceID:  src.ID,
			Kind:      kind,
			Status:    models.DevRequestPending,
			Priority:  priority,
			Notes:     fmt.Sprintf("last error: %s", src.Health.LastError),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := h.store.CreateDevRequest(ctx, req); err != nil {
			log.Printf("Warning: failed to file dev request for source %s: %v", src.ID, err)
			continue
		}
		filed++
	}
	return filed, nil
}

// SweepStaleDevRequests fails requests untouched past the staleness window
// and raises an alert for each, so dropped work is visible.
func (h *HealthService) SweepStaleDevRequests(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-h.cfg.DevRequestStaleAfter)
	stale, err := h.store.GetStaleDevRequests(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, req := range stale {
		if err := h.store.UpdateDevRequestStatus(ctx, req.ID, models.DevRequestFailed); err != nil {
			return 0, err
		}
		err := h.alert(ctx, req.SourceID, models.AlertStaleDevRequest, models.SeverityWarning,
			fmt.Sprintf("dev request %d (%s) stale since %s, marked failed", req.ID, req.Kind, req.UpdatedAt.Format(time.RFC3339)))
		if err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// RefreshQuality recomputes a source's quality tier from its recent session
// completeness and auto-activates high scorers that have a working method.
func (h *HealthService) RefreshQuality(ctx context.Context, source *models.ScrapeSource) error {
	scores, err := h.store.RecentCompletenessScores(ctx, source.ID, 50)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		return nil
	}

	avg, tier, activate := QualityFromScores(scores, h.cfg.AutoActivateScore)
	if err := h.store.UpdateSourceQuality(ctx, source.ID, avg, tier); err != nil {
		return err
	}
	source.QualityScore = avg
	source.QualityTier = tier

	if activate && !source.Active && source.CanActivate() {
		if err := h.store.SetSourceActive(ctx, source.ID, true); err != nil {
			return err
		}
		source.Active = true
		log.Printf("Auto-activated source %s (avg completeness %.1f)", source.URL, avg)
	}
	return nil
}
