package storage

import (
	"context"
	"time"

	"campscout/models"
)

func (s *PostgresStore) CreateScheduledTask(ctx context.Context, t *models.ScheduledTask) error {
	query := `
		INSERT INTO scheduled_tasks (kind, payload, run_at, status, created_at)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id`

	return s.pool.QueryRow(ctx, query, t.Kind, t.Payload, t.RunAt, t.CreatedAt).Scan(&t.ID)
}

// ClaimDueTasks marks due pending tasks as claimed by bumping attempts and
// returns them. Claimed-but-crashed tasks become due again after the
// redelivery window.
func (s *PostgresStore) ClaimDueTasks(ctx context.Context, limit int) ([]models.ScheduledTask, error) {
	query := `
		UPDATE scheduled_tasks SET attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM scheduled_tasks
			WHERE status = 'pending' AND run_at <= NOW()
			ORDER BY run_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, payload, run_at, status, attempts, last_error, created_at`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.ScheduledTask
	for rows.Next() {
		var t models.ScheduledTask
		if err := rows.Scan(&t.ID, &t.Kind, &t.Payload, &t.RunAt, &t.Status, &t.Attempts, &t.LastError, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) CompleteTask(ctx context.Context, id int64) error {
	query := `UPDATE scheduled_tasks SET status = 'done' WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id)
	return err
}

// FailTask records the error. Tasks under the attempt cap are rescheduled;
// the rest are marked failed.
func (s *PostgresStore) FailTask(ctx context.Context, id int64, taskErr string, retryIn time.Duration, maxAttempts int) error {
	query := `
		UPDATE scheduled_tasks SET
			last_error = $2,
			status = CASE WHEN attempts >= $4 THEN 'failed' ELSE 'pending' END,
			run_at = CASE WHEN attempts >= $4 THEN run_at ELSE NOW() + $3 END
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, taskErr, retryIn, maxAttempts)
	return err
}
