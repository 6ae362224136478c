package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// jobTransitions is the allowed edge set for job status changes.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusRunning},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed},
}

// CanTransitionJob reports whether a job may move from one status to another.
func CanTransitionJob(from, to JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ScrapeJob is one execution attempt of a source. At most one pending and
// one running job exist per source at a time, enforced at creation.
type ScrapeJob struct {
	ID              int64      `json:"id" db:"id"`
	SourceID        uuid.UUID  `json:"source_id" db:"source_id"`
	Status          JobStatus  `json:"status" db:"status"`
	StartedAt       *time.Time `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	SessionsFound   int        `json:"sessions_found" db:"sessions_found"`
	SessionsCreated int        `json:"sessions_created" db:"sessions_created"`
	SessionsUpdated int        `json:"sessions_updated" db:"sessions_updated"`
	PendingCreated  int        `json:"pending_created" db:"pending_created"`
	ErrorMessage    string     `json:"error_message" db:"error_message"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
