package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

const sessionColumns = `id, camp_id, location_id, organization_id, city_id, source_id, natural_key,
	name, description, start_date, end_date, drop_off, pick_up, price_cents, age_min, age_max,
	capacity, enrolled_count, waitlist_count, waitlist_open, status, registration_url,
	completeness, missing_fields, provenance, last_seen_at, created_at, updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	var sess models.Session
	err := row.Scan(
		&sess.ID, &sess.CampID, &sess.LocationID, &sess.OrganizationID, &sess.CityID, &sess.SourceID, &sess.NaturalKey,
		&sess.Name, &sess.Description, &sess.StartDate, &sess.EndDate, &sess.DropOff, &sess.PickUp,
		&sess.PriceCents, &sess.AgeMin, &sess.AgeMax,
		&sess.Capacity, &sess.EnrolledCount, &sess.WaitlistCount, &sess.WaitlistOpen, &sess.Status, &sess.RegistrationURL,
		&sess.Completeness, &sess.MissingFields, &sess.Provenance, &sess.LastSeenAt, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.Session) error {
	query := `
		INSERT INTO sessions (
			id, camp_id, location_id, organization_id, city_id, source_id, natural_key,
			name, description, start_date, end_date, drop_off, pick_up, price_cents, age_min, age_max,
			capacity, enrolled_count, waitlist_count, waitlist_open, status, registration_url,
			completeness, missing_fields, provenance, last_seen_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		sess.ID, sess.CampID, sess.LocationID, sess.OrganizationID, sess.CityID, sess.SourceID, sess.NaturalKey,
		sess.Name, sess.Description, sess.StartDate, sess.EndDate, sess.DropOff, sess.PickUp,
		sess.PriceCents, sess.AgeMin, sess.AgeMax,
		sess.Capacity, sess.EnrolledCount, sess.WaitlistCount, sess.WaitlistOpen, sess.Status, sess.RegistrationURL,
		sess.Completeness, sess.MissingFields, sess.Provenance, sess.LastSeenAt, sess.CreatedAt, sess.UpdatedAt,
	).Scan(&sess.ID)
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetSessionByNaturalKey(ctx context.Context, key string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE natural_key = $1`
	return scanSession(s.pool.QueryRow(ctx, query, key))
}

// GetSessionsForSource returns all non-terminal sessions tied to a source.
func (s *PostgresStore) GetSessionsForSource(ctx context.Context, sourceID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE source_id = $1 AND status NOT IN ('cancelled', 'completed')
		ORDER BY start_date`
	return s.querySessions(ctx, query, sourceID)
}

// GetActiveSessions returns sessions in active status, optionally scoped to a city.
func (s *PostgresStore) GetActiveSessions(ctx context.Context) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE status = 'active' ORDER BY start_date`
	return s.querySessions(ctx, query)
}

func (s *PostgresStore) querySessions(ctx context.Context, query string, args ...interface{}) ([]models.Session, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// UpdateSessionFields patches the scrape-owned fields of a session after a
// re-scrape matched it.
func (s *PostgresStore) UpdateSessionFields(ctx context.Context, sess *models.Session) error {
	query := `
		UPDATE sessions SET
			natural_key = $2, name = $3, description = $4, start_date = $5, end_date = $6,
			drop_off = $7, pick_up = $8, price_cents = $9, age_min = $10, age_max = $11,
			capacity = $12, status = $13, registration_url = $14,
			completeness = $15, missing_fields = $16, last_seen_at = $17, updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		sess.ID, sess.NaturalKey, sess.Name, sess.Description, sess.StartDate, sess.EndDate,
		sess.DropOff, sess.PickUp, sess.PriceCents, sess.AgeMin, sess.AgeMax,
		sess.Capacity, sess.Status, sess.RegistrationURL,
		sess.Completeness, sess.MissingFields, sess.LastSeenAt,
	)
	return err
}

func (s *PostgresStore) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error {
	query := `UPDATE sessions SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status)
	return err
}

// RecentCompletenessScores returns the completeness of a source's most recent
// sessions, newest first, feeding the quality tier computation.
func (s *PostgresStore) RecentCompletenessScores(ctx context.Context, sourceID uuid.UUID, limit int) ([]int, error) {
	query := `
		SELECT completeness FROM sessions
		WHERE source_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, sourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// =============================================================================
// Availability snapshots
// =============================================================================

func (s *PostgresStore) CreateAvailabilitySnapshot(ctx context.Context, snap *models.AvailabilitySnapshot) error {
	query := `
		INSERT INTO availability_snapshots (session_id, spots_remaining, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	return s.pool.QueryRow(ctx, query, snap.SessionID, snap.SpotsRemaining, snap.RecordedAt).Scan(&snap.ID)
}

// GetLatestSnapshot returns the most recent availability snapshot for a
// session, or nil when none exists.
func (s *PostgresStore) GetLatestSnapshot(ctx context.Context, sessionID uuid.UUID) (*models.AvailabilitySnapshot, error) {
	query := `
		SELECT id, session_id, spots_remaining, recorded_at
		FROM availability_snapshots
		WHERE session_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`

	var snap models.AvailabilitySnapshot
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(&snap.ID, &snap.SessionID, &snap.SpotsRemaining, &snap.RecordedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetRecentSnapshots returns up to limit snapshots for a session, newest
// first.
func (s *PostgresStore) GetRecentSnapshots(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.AvailabilitySnapshot, error) {
	query := `
		SELECT id, session_id, spots_remaining, recorded_at
		FROM availability_snapshots
		WHERE session_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []models.AvailabilitySnapshot
	for rows.Next() {
		var snap models.AvailabilitySnapshot
		if err := rows.Scan(&snap.ID, &snap.SessionID, &snap.SpotsRemaining, &snap.RecordedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// =============================================================================
// Camps
// =============================================================================

func (s *PostgresStore) GetCamp(ctx context.Context, id uuid.UUID) (*models.Camp, error) {
	query := `
		SELECT id, organization_id, city_id, name, description, category, image_id, session_count, created_at, updated_at
		FROM camps WHERE id = $1`

	var c models.Camp
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OrganizationID, &c.CityID, &c.Name, &c.Description, &c.Category,
		&c.ImageID, &c.SessionCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) GetCampByName(ctx context.Context, cityID uuid.UUID, name string) (*models.Camp, error) {
	query := `
		SELECT id, organization_id, city_id, name, description, category, image_id, session_count, created_at, updated_at
		FROM camps WHERE city_id = $1 AND name = $2`

	var c models.Camp
	err := s.pool.QueryRow(ctx, query, cityID, name).Scan(
		&c.ID, &c.OrganizationID, &c.CityID, &c.Name, &c.Description, &c.Category,
		&c.ImageID, &c.SessionCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) CreateCamp(ctx context.Context, c *models.Camp) error {
	query := `
		INSERT INTO camps (id, organization_id, city_id, name, description, category, image_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		c.ID, c.OrganizationID, c.CityID, c.Name, c.Description, c.Category, c.ImageID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

// AdjustCampCounts is the single write path for the denormalized session
// counter on a camp.
func (s *PostgresStore) AdjustCampCounts(ctx context.Context, id uuid.UUID, sessionDelta int) error {
	query := `UPDATE camps SET session_count = GREATEST(session_count + $2, 0), updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, sessionDelta)
	return err
}

// =============================================================================
// Cities
// =============================================================================

func (s *PostgresStore) GetCityBySlug(ctx context.Context, slug string) (*models.City, error) {
	query := `SELECT id, slug, name, brand_name, from_address, timezone, created_at FROM cities WHERE slug = $1`

	var c models.City
	err := s.pool.QueryRow(ctx, query, slug).Scan(
		&c.ID, &c.Slug, &c.Name, &c.BrandName, &c.FromAddress, &c.Timezone, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) GetCity(ctx context.Context, id uuid.UUID) (*models.City, error) {
	query := `SELECT id, slug, name, brand_name, from_address, timezone, created_at FROM cities WHERE id = $1`

	var c models.City
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Slug, &c.Name, &c.BrandName, &c.FromAddress, &c.Timezone, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListCities(ctx context.Context) ([]models.City, error) {
	query := `SELECT id, slug, name, brand_name, from_address, timezone, created_at FROM cities ORDER BY slug`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.BrandName, &c.FromAddress, &c.Timezone, &c.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// TouchSessionSeen advances last_seen_at for sessions observed in a scrape.
func (s *PostgresStore) TouchSessionSeen(ctx context.Context, id uuid.UUID, t time.Time) error {
	query := `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, t)
	return err
}
