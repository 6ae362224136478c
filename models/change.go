package models

import (
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeSessionAdded   ChangeType = "session_added"
	ChangeSessionRemoved ChangeType = "session_removed"
	ChangeStatusChanged  ChangeType = "status_changed"
	ChangePriceChanged   ChangeType = "price_changed"
	ChangeDatesChanged   ChangeType = "dates_changed"
)

// ScrapeChange is an immutable record of a difference detected between two
// scrapes of the same source. The notification fan-out consumes rows with
// notified = false.
type ScrapeChange struct {
	ID        int64      `json:"id" db:"id"`
	SourceID  uuid.UUID  `json:"source_id" db:"source_id"`
	SessionID uuid.UUID  `json:"session_id" db:"session_id"`
	JobID     *int64     `json:"job_id" db:"job_id"`
	Type      ChangeType `json:"type" db:"type"`
	Field     string     `json:"field" db:"field"`
	OldValue  string     `json:"old_value" db:"old_value"`
	NewValue  string     `json:"new_value" db:"new_value"`
	Notified  bool       `json:"notified" db:"notified"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
