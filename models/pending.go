package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PendingStatus string

const (
	PendingStatusNew       PendingStatus = "new"
	PendingStatusReviewed  PendingStatus = "reviewed"
	PendingStatusDiscarded PendingStatus = "discarded"
)

// FieldError is one validation failure on a scraped record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PendingSession holds a scraped record that failed full validation,
// kept for manual repair or discard.
type PendingSession struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	SourceID     uuid.UUID       `json:"source_id" db:"source_id"`
	JobID        *int64          `json:"job_id" db:"job_id"`
	Name         string          `json:"name" db:"name"`
	RawPayload   json.RawMessage `json:"raw_payload" db:"raw_payload"`
	Parsed       json.RawMessage `json:"parsed" db:"parsed"`
	FieldErrors  []FieldError    `json:"field_errors" db:"field_errors"`
	Completeness int             `json:"completeness" db:"completeness"`
	Status       PendingStatus   `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	ReviewedAt   *time.Time      `json:"reviewed_at" db:"reviewed_at"`
}
