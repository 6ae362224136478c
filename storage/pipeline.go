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

// =============================================================================
// Pending sessions
// =============================================================================

func (s *PostgresStore) CreatePendingSession(ctx context.Context, p *models.PendingSession) error {
	errorsJSON, err := json.Marshal(p.FieldErrors)
	if err != nil {
		return fmt.Errorf("encode field errors: %w", err)
	}

	query := `
		INSERT INTO pending_sessions (
			id, source_id, job_id, name, raw_payload, parsed, field_errors, completeness, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		p.ID, p.SourceID, p.JobID, p.Name, p.RawPayload, p.Parsed, errorsJSON, p.Completeness, p.Status, p.CreatedAt,
	).Scan(&p.ID)
}

func (s *PostgresStore) GetPendingSession(ctx context.Context, id uuid.UUID) (*models.PendingSession, error) {
	query := `
		SELECT id, source_id, job_id, name, raw_payload, parsed, field_errors, completeness, status, created_at, reviewed_at
		FROM pending_sessions WHERE id = $1`

	var p models.PendingSession
	var errorsJSON []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SourceID, &p.JobID, &p.Name, &p.RawPayload, &p.Parsed,
		&errorsJSON, &p.Completeness, &p.Status, &p.CreatedAt, &p.ReviewedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &p.FieldErrors); err != nil {
			return nil, fmt.Errorf("decode field errors: %w", err)
		}
	}
	return &p, nil
}

func (s *PostgresStore) ResolvePendingSession(ctx context.Context, id uuid.UUID, status models.PendingStatus) error {
	query := `UPDATE pending_sessions SET status = $2, reviewed_at = NOW() WHERE id = $1 AND status = 'new'`
	_, err := s.pool.Exec(ctx, query, id, status)
	return err
}

// =============================================================================
// Scrape changes
// =============================================================================

func (s *PostgresStore) CreateChange(ctx context.Context, c *models.ScrapeChange) error {
	query := `
		INSERT INTO scrape_changes (source_id, session_id, job_id, type, field, old_value, new_value, notified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		c.SourceID, c.SessionID, c.JobID, c.Type, c.Field, c.OldValue, c.NewValue, c.CreatedAt,
	).Scan(&c.ID)
}

// LatestRemovalTimes returns, per session of a source, when its most recent
// session_removed change was recorded.
func (s *PostgresStore) LatestRemovalTimes(ctx context.Context, sourceID uuid.UUID) (map[uuid.UUID]time.Time, error) {
	query := `
		SELECT session_id, MAX(created_at)
		FROM scrape_changes
		WHERE source_id = $1 AND type = $2
		GROUP BY session_id`

	rows, err := s.pool.Query(ctx, query, sourceID, models.ChangeSessionRemoved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	removals := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var sessionID uuid.UUID
		var removedAt time.Time
		if err := rows.Scan(&sessionID, &removedAt); err != nil {
			return nil, err
		}
		removals[sessionID] = removedAt
	}
	return removals, rows.Err()
}

// GetUnnotifiedChanges returns unnotified changes newer than the cutoff.
func (s *PostgresStore) GetUnnotifiedChanges(ctx context.Context, since time.Time) ([]models.ScrapeChange, error) {
	query := `
		SELECT id, source_id, session_id, job_id, type, field, old_value, new_value, notified, created_at
		FROM scrape_changes
		WHERE NOT notified AND created_at >= $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []models.ScrapeChange
	for rows.Next() {
		var c models.ScrapeChange
		if err := rows.Scan(
			&c.ID, &c.SourceID, &c.SessionID, &c.JobID, &c.Type, &c.Field,
			&c.OldValue, &c.NewValue, &c.Notified, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (s *PostgresStore) MarkChangesNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE scrape_changes SET notified = TRUE WHERE id = ANY($1)`
	_, err := s.pool.Exec(ctx, query, ids)
	return err
}

// =============================================================================
// Alerts
// =============================================================================

func (s *PostgresStore) CreateAlert(ctx context.Context, a *models.ScraperAlert) error {
	query := `
		INSERT INTO scraper_alerts (source_id, kind, severity, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return s.pool.QueryRow(ctx, query, a.SourceID, a.Kind, a.Severity, a.Message, a.CreatedAt).Scan(&a.ID)
}

// AcknowledgeAlert acknowledges exactly once: a second call finds no
// unacknowledged row and reports ErrDuplicate.
func (s *PostgresStore) AcknowledgeAlert(ctx context.Context, id int64, by string) error {
	query := `
		UPDATE scraper_alerts SET acknowledged_at = NOW(), acknowledged_by = $2
		WHERE id = $1 AND acknowledged_at IS NULL`

	tag, err := s.pool.Exec(ctx, query, id, by)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

// =============================================================================
// Dev requests
// =============================================================================

func (s *PostgresStore) CreateDevRequest(ctx context.Context, d *models.DevRequest) error {
	query := `
		INSERT INTO dev_requests (source_id, kind, status, priority, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		d.SourceID, d.Kind, d.Status, d.Priority, d.Notes, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
}

func (s *PostgresStore) GetDevRequest(ctx context.Context, id int64) (*models.DevRequest, error) {
	query := `
		SELECT id, source_id, kind, status, priority, notes, created_at, updated_at
		FROM dev_requests WHERE id = $1`

	var d models.DevRequest
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SourceID, &d.Kind, &d.Status, &d.Priority, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) UpdateDevRequestStatus(ctx context.Context, id int64, status models.DevRequestStatus) error {
	query := `UPDATE dev_requests SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status)
	return err
}

// GetStaleDevRequests returns pending/in-progress requests untouched since
// the cutoff.
func (s *PostgresStore) GetStaleDevRequests(ctx context.Context, cutoff time.Time) ([]models.DevRequest, error) {
	query := `
		SELECT id, source_id, kind, status, priority, notes, created_at, updated_at
		FROM dev_requests
		WHERE status IN ('pending', 'in_progress') AND updated_at < $1
		ORDER BY updated_at`

	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.DevRequest
	for rows.Next() {
		var d models.DevRequest
		if err := rows.Scan(&d.ID, &d.SourceID, &d.Kind, &d.Status, &d.Priority, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, d)
	}
	return reqs, rows.Err()
}

// =============================================================================
// Notification records
// =============================================================================

// CreateNotificationRecord inserts the dedup row for (family, session, type).
// Returns ErrDuplicate when the triple was already notified.
func (s *PostgresStore) CreateNotificationRecord(ctx context.Context, r *models.NotificationRecord) error {
	query := `
		INSERT INTO notification_records (family_id, session_id, type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (family_id, session_id, type) DO NOTHING
		RETURNING id`

	err := s.pool.QueryRow(ctx, query, r.FamilyID, r.SessionID, r.Type, r.CreatedAt).Scan(&r.ID)
	if err == pgx.ErrNoRows {
		return ErrDuplicate
	}
	return err
}

// GetNotificationRecord loads the dedup row for (family, session, type).
func (s *PostgresStore) GetNotificationRecord(ctx context.Context, familyID, sessionID uuid.UUID, kind models.NotificationType) (*models.NotificationRecord, error) {
	query := `
		SELECT id, family_id, session_id, type, sent_at, send_error, created_at
		FROM notification_records
		WHERE family_id = $1 AND session_id = $2 AND type = $3`

	var r models.NotificationRecord
	err := s.pool.QueryRow(ctx, query, familyID, sessionID, kind).Scan(
		&r.ID, &r.FamilyID, &r.SessionID, &r.Type, &r.SentAt, &r.SendError, &r.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) MarkNotificationSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `UPDATE notification_records SET sent_at = $2 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, sentAt)
	return err
}

func (s *PostgresStore) MarkNotificationFailed(ctx context.Context, id int64, sendErr string) error {
	query := `UPDATE notification_records SET send_error = $2 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, sendErr)
	return err
}

// =============================================================================
// Candidate sites (discovery)
// =============================================================================

func (s *PostgresStore) CreateCandidateSite(ctx context.Context, c *models.CandidateSite) error {
	query := `
		INSERT INTO candidate_sites (url, host, title, city_id, score, found_via, seed_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (host, city_id) DO NOTHING
		RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		c.URL, c.Host, c.Title, c.CityID, c.Score, c.FoundVia, c.SeedURL, c.Status, c.CreatedAt,
	).Scan(&c.ID)
	if err == pgx.ErrNoRows {
		return ErrDuplicate
	}
	return err
}

func (s *PostgresStore) GetTopCandidates(ctx context.Context, cityID uuid.UUID, limit int) ([]models.CandidateSite, error) {
	query := `
		SELECT id, url, host, title, city_id, score, found_via, seed_url, status, created_at, reviewed_at
		FROM candidate_sites
		WHERE city_id = $1 AND status = 'new'
		ORDER BY score DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, cityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.CandidateSite
	for rows.Next() {
		var c models.CandidateSite
		if err := rows.Scan(
			&c.ID, &c.URL, &c.Host, &c.Title, &c.CityID, &c.Score,
			&c.FoundVia, &c.SeedURL, &c.Status, &c.CreatedAt, &c.ReviewedAt,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (s *PostgresStore) GetCandidateSite(ctx context.Context, id int64) (*models.CandidateSite, error) {
	query := `
		SELECT id, url, host, title, city_id, score, found_via, seed_url, status, created_at, reviewed_at
		FROM candidate_sites
		WHERE id = $1`

	var c models.CandidateSite
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.URL, &c.Host, &c.Title, &c.CityID, &c.Score,
		&c.FoundVia, &c.SeedURL, &c.Status, &c.CreatedAt, &c.ReviewedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ResolveCandidateSite(ctx context.Context, id int64, status models.CandidateStatus) error {
	query := `UPDATE candidate_sites SET status = $2, reviewed_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status)
	return err
}
