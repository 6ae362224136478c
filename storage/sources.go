package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

const sourceColumns = `id, url, secondary_urls, organization_id, city_id, name, method,
	consecutive_failures, total_runs, successful_runs, success_rate, last_error, last_run_at, needs_regeneration,
	cadence_hours, next_due_at, active, session_count, pending_count,
	quality_score, quality_tier, discovered_by, created_at, updated_at`

func scanSource(row pgx.Row) (*models.ScrapeSource, error) {
	var src models.ScrapeSource
	var methodJSON []byte
	err := row.Scan(
		&src.ID, &src.URL, &src.SecondaryURLs, &src.OrganizationID, &src.CityID, &src.Name, &methodJSON,
		&src.Health.ConsecutiveFailures, &src.Health.TotalRuns, &src.Health.SuccessfulRuns,
		&src.Health.SuccessRate, &src.Health.LastError, &src.Health.LastRunAt, &src.Health.NeedsRegeneration,
		&src.CadenceHours, &src.NextDueAt, &src.Active, &src.SessionCount, &src.PendingCount,
		&src.QualityScore, &src.QualityTier, &src.DiscoveredBy, &src.CreatedAt, &src.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(methodJSON) > 0 {
		var m models.ExtractionMethod
		if err := json.Unmarshal(methodJSON, &m); err != nil {
			return nil, fmt.Errorf("decode method: %w", err)
		}
		src.Method = &m
	}
	return &src, nil
}

func (s *PostgresStore) CreateSource(ctx context.Context, src *models.ScrapeSource) error {
	methodJSON, err := marshalMethod(src.Method)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scrape_sources (
			id, url, secondary_urls, organization_id, city_id, name, method,
			cadence_hours, next_due_at, active, quality_tier, discovered_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (url) DO NOTHING
		RETURNING id`

	err = s.pool.QueryRow(ctx, query,
		src.ID, src.URL, src.SecondaryURLs, src.OrganizationID, src.CityID, src.Name, methodJSON,
		src.CadenceHours, src.NextDueAt, src.Active, src.QualityTier, src.DiscoveredBy, src.CreatedAt, src.UpdatedAt,
	).Scan(&src.ID)
	if err == pgx.ErrNoRows {
		return ErrDuplicate
	}
	return err
}

func (s *PostgresStore) GetSource(ctx context.Context, id uuid.UUID) (*models.ScrapeSource, error) {
	query := `SELECT ` + sourceColumns + ` FROM scrape_sources WHERE id = $1`
	return scanSource(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetSourceByURL(ctx context.Context, url string) (*models.ScrapeSource, error) {
	query := `SELECT ` + sourceColumns + ` FROM scrape_sources WHERE url = $1`
	return scanSource(s.pool.QueryRow(ctx, query, url))
}

// GetDueSources returns active sources whose next_due_at has passed.
func (s *PostgresStore) GetDueSources(ctx context.Context, limit int) ([]models.ScrapeSource, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM scrape_sources
		WHERE active AND (next_due_at IS NULL OR next_due_at <= NOW())
		ORDER BY next_due_at NULLS FIRST
		LIMIT $1`

	return s.querySources(ctx, query, limit)
}

// GetSourcesNeedingScraper returns sources that are flagged for
// regeneration or have no extraction method, excluding those with an open
// dev request. Regeneration candidates sort first. Method-less sources are
// inactive by construction, so no active filter applies here.
func (s *PostgresStore) GetSourcesNeedingScraper(ctx context.Context, limit int) ([]models.ScrapeSource, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM scrape_sources src
		WHERE (src.needs_regeneration OR src.method IS NULL)
		  AND NOT EXISTS (
			SELECT 1 FROM dev_requests dr
			WHERE dr.source_id = src.id AND dr.status NOT IN ('completed', 'failed')
		  )
		ORDER BY src.needs_regeneration DESC, src.created_at
		LIMIT $1`

	return s.querySources(ctx, query, limit)
}

func (s *PostgresStore) GetSourcesForCity(ctx context.Context, cityID uuid.UUID) ([]models.ScrapeSource, error) {
	query := `SELECT ` + sourceColumns + ` FROM scrape_sources WHERE city_id = $1 ORDER BY created_at`
	return s.querySources(ctx, query, cityID)
}

func (s *PostgresStore) querySources(ctx context.Context, query string, args ...interface{}) ([]models.ScrapeSource, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []models.ScrapeSource
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

func (s *PostgresStore) SetSourceMethod(ctx context.Context, id uuid.UUID, method *models.ExtractionMethod) error {
	methodJSON, err := marshalMethod(method)
	if err != nil {
		return err
	}
	query := `UPDATE scrape_sources SET method = $2, needs_regeneration = FALSE, updated_at = NOW() WHERE id = $1`
	_, err = s.pool.Exec(ctx, query, id, methodJSON)
	return err
}

func (s *PostgresStore) SetSourceActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE scrape_sources SET active = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, active)
	return err
}

func (s *PostgresStore) SetSourceNextDue(ctx context.Context, id uuid.UUID, nextDue time.Time) error {
	query := `UPDATE scrape_sources SET next_due_at = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, nextDue)
	return err
}

// UpdateSourceHealth writes the recomputed health counters after a job run.
func (s *PostgresStore) UpdateSourceHealth(ctx context.Context, id uuid.UUID, h *models.ScraperHealth) error {
	query := `
		UPDATE scrape_sources SET
			consecutive_failures = $2, total_runs = $3, successful_runs = $4,
			success_rate = $5, last_error = $6, last_run_at = $7, needs_regeneration = $8,
			updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		id, h.ConsecutiveFailures, h.TotalRuns, h.SuccessfulRuns,
		h.SuccessRate, h.LastError, h.LastRunAt, h.NeedsRegeneration,
	)
	return err
}

func (s *PostgresStore) UpdateSourceQuality(ctx context.Context, id uuid.UUID, score float64, tier models.QualityTier) error {
	query := `UPDATE scrape_sources SET quality_score = $2, quality_tier = $3, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, score, tier)
	return err
}

// AdjustSourceCounts is the single write path for the denormalized session
// counters on a source.
func (s *PostgresStore) AdjustSourceCounts(ctx context.Context, id uuid.UUID, sessionDelta, pendingDelta int) error {
	query := `
		UPDATE scrape_sources SET
			session_count = GREATEST(session_count + $2, 0),
			pending_count = GREATEST(pending_count + $3, 0),
			updated_at = NOW()
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, sessionDelta, pendingDelta)
	return err
}

func marshalMethod(m *models.ExtractionMethod) ([]byte, error) {
	if m.IsZero() {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode method: %w", err)
	}
	return data, nil
}
