package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

const jobColumns = `id, source_id, status, started_at, finished_at,
	sessions_found, sessions_created, sessions_updated, pending_created, error_message, created_at`

func scanJob(row pgx.Row) (*models.ScrapeJob, error) {
	var j models.ScrapeJob
	err := row.Scan(
		&j.ID, &j.SourceID, &j.Status, &j.StartedAt, &j.FinishedAt,
		&j.SessionsFound, &j.SessionsCreated, &j.SessionsUpdated, &j.PendingCreated, &j.ErrorMessage, &j.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a pending job for a source. The insert is rejected when
// the source already has a pending or running job; the check and insert run
// in one statement so the window for a duplicate is a single round trip.
func (s *PostgresStore) CreateJob(ctx context.Context, job *models.ScrapeJob) error {
	query := `
		INSERT INTO scrape_jobs (source_id, status, created_at)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM scrape_jobs
			WHERE source_id = $1 AND status IN ('pending', 'running')
		)
		RETURNING id`

	err := s.pool.QueryRow(ctx, query, job.SourceID, models.JobStatusPending, job.CreatedAt).Scan(&job.ID)
	if err == pgx.ErrNoRows {
		return ErrJobExists
	}
	if err != nil {
		return err
	}
	job.Status = models.JobStatusPending
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id int64) (*models.ScrapeJob, error) {
	query := `SELECT ` + jobColumns + ` FROM scrape_jobs WHERE id = $1`
	return scanJob(s.pool.QueryRow(ctx, query, id))
}

// MarkJobRunning transitions pending -> running. The status guard makes a
// repeated call a no-op.
func (s *PostgresStore) MarkJobRunning(ctx context.Context, id int64, startedAt time.Time) error {
	query := `UPDATE scrape_jobs SET status = 'running', started_at = $2 WHERE id = $1 AND status = 'pending'`
	_, err := s.pool.Exec(ctx, query, id, startedAt)
	return err
}

// FinishJob transitions running -> completed or failed, recording counts.
func (s *PostgresStore) FinishJob(ctx context.Context, job *models.ScrapeJob) error {
	query := `
		UPDATE scrape_jobs SET
			status = $2, finished_at = $3, sessions_found = $4,
			sessions_created = $5, sessions_updated = $6, pending_created = $7, error_message = $8
		WHERE id = $1 AND status = 'running'`

	_, err := s.pool.Exec(ctx, query,
		job.ID, job.Status, job.FinishedAt, job.SessionsFound,
		job.SessionsCreated, job.SessionsUpdated, job.PendingCreated, job.ErrorMessage,
	)
	return err
}

func (s *PostgresStore) GetActiveJobForSource(ctx context.Context, sourceID uuid.UUID) (*models.ScrapeJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM scrape_jobs
		WHERE source_id = $1 AND status IN ('pending', 'running')
		ORDER BY created_at
		LIMIT 1`
	return scanJob(s.pool.QueryRow(ctx, query, sourceID))
}

func (s *PostgresStore) CreateScrapeLog(ctx context.Context, entry *models.ScrapeLog) error {
	query := `
		INSERT INTO scrape_logs (job_id, timestamp, level, message, source_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		entry.JobID, entry.Timestamp, entry.Level, entry.Message, entry.SourceID,
	).Scan(&entry.ID)
}
