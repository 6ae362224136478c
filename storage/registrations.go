package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

func (s *PostgresStore) GetFamily(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	query := `
		SELECT id, email, name, city_id, availability_alerts, premium, billing_customer_id, created_at
		FROM families WHERE id = $1`

	var f models.Family
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Email, &f.Name, &f.CityID, &f.AvailabilityAlerts, &f.Premium, &f.BillingCustomerID, &f.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) GetChild(ctx context.Context, id uuid.UUID) (*models.Child, error) {
	query := `SELECT id, family_id, name, birth_year, created_at FROM children WHERE id = $1`

	var c models.Child
	err := s.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.FamilyID, &c.Name, &c.BirthYear, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const registrationColumns = `id, family_id, child_id, session_id, status, waitlist_position, created_at, updated_at`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var r models.Registration
	err := row.Scan(
		&r.ID, &r.FamilyID, &r.ChildID, &r.SessionID, &r.Status, &r.WaitlistPosition, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return scanRegistration(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetRegistrationForChild(ctx context.Context, childID, sessionID uuid.UUID) (*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE child_id = $1 AND session_id = $2 AND status != 'cancelled'
		LIMIT 1`
	return scanRegistration(s.pool.QueryRow(ctx, query, childID, sessionID))
}

// WithTx runs fn inside a transaction, rolling back on error.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LockSession reads a session row FOR UPDATE so enrollment math is serialized
// per session.
func (s *PostgresStore) LockSession(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return scanSession(tx.QueryRow(ctx, query, id))
}

func (s *PostgresStore) CreateRegistrationTx(ctx context.Context, tx pgx.Tx, r *models.Registration) error {
	query := `
		INSERT INTO registrations (id, family_id, child_id, session_id, status, waitlist_position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	return tx.QueryRow(ctx, query,
		r.ID, r.FamilyID, r.ChildID, r.SessionID, r.Status, r.WaitlistPosition, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
}

func (s *PostgresStore) UpdateRegistrationTx(ctx context.Context, tx pgx.Tx, r *models.Registration) error {
	query := `
		UPDATE registrations SET status = $2, waitlist_position = $3, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.Exec(ctx, query, r.ID, r.Status, r.WaitlistPosition)
	return err
}

// SetSessionEnrollmentTx is the single write path for the denormalized
// enrollment and waitlist counters plus the capacity-driven status.
func (s *PostgresStore) SetSessionEnrollmentTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, enrolled, waitlisted int, status models.SessionStatus) error {
	query := `
		UPDATE sessions SET enrolled_count = $2, waitlist_count = $3, status = $4, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.Exec(ctx, query, id, enrolled, waitlisted, status)
	return err
}

// FirstWaitlistedTx returns the head of a session's waitlist, locked, or nil.
func (s *PostgresStore) FirstWaitlistedTx(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE session_id = $1 AND status = 'waitlisted'
		ORDER BY waitlist_position
		LIMIT 1
		FOR UPDATE SKIP LOCKED`
	return scanRegistration(tx.QueryRow(ctx, query, sessionID))
}

// GetInterestedFamilies resolves families with an interested registration on
// a session who have not opted out of availability alerts.
func (s *PostgresStore) GetInterestedFamilies(ctx context.Context, sessionID uuid.UUID) ([]models.Family, error) {
	query := `
		SELECT DISTINCT f.id, f.email, f.name, f.city_id, f.availability_alerts, f.premium, f.billing_customer_id, f.created_at
		FROM registrations r
		JOIN families f ON f.id = r.family_id
		WHERE r.session_id = $1 AND r.status = 'interested' AND f.availability_alerts`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(
			&f.ID, &f.Email, &f.Name, &f.CityID, &f.AvailabilityAlerts, &f.Premium, &f.BillingCustomerID, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, rows.Err()
}
