package models

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusFailed  TaskStatus = "failed"
)

type TaskKind string

const (
	TaskSendDigest     TaskKind = "send_digest"
	TaskRefreshQuality TaskKind = "refresh_quality"
	TaskScrapeSource   TaskKind = "scrape_source"
)

// ScheduledTask is durable delayed work: "run this after N ms" persisted in
// the store so it survives restarts. The scheduler polls for due rows.
type ScheduledTask struct {
	ID        int64           `json:"id" db:"id"`
	Kind      TaskKind        `json:"kind" db:"kind"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	RunAt     time.Time       `json:"run_at" db:"run_at"`
	Status    TaskStatus      `json:"status" db:"status"`
	Attempts  int             `json:"attempts" db:"attempts"`
	LastError string          `json:"last_error" db:"last_error"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
