package models

import (
	"time"

	"github.com/google/uuid"
)

type DevRequestStatus string

const (
	DevRequestPending       DevRequestStatus = "pending"
	DevRequestInProgress    DevRequestStatus = "in_progress"
	DevRequestTesting       DevRequestStatus = "testing"
	DevRequestNeedsFeedback DevRequestStatus = "needs_feedback"
	DevRequestCompleted     DevRequestStatus = "completed"
	DevRequestFailed        DevRequestStatus = "failed"
)

var devRequestTransitions = map[DevRequestStatus][]DevRequestStatus{
	DevRequestPending:       {DevRequestInProgress, DevRequestFailed},
	DevRequestInProgress:    {DevRequestTesting, DevRequestFailed},
	DevRequestTesting:       {DevRequestNeedsFeedback, DevRequestCompleted, DevRequestFailed},
	DevRequestNeedsFeedback: {DevRequestInProgress, DevRequestFailed},
}

// CanTransitionDevRequest reports whether a dev request may change status.
func CanTransitionDevRequest(from, to DevRequestStatus) bool {
	for _, next := range devRequestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOpen reports whether a dev request still blocks new requests for its source.
func (s DevRequestStatus) IsOpen() bool {
	return s != DevRequestCompleted && s != DevRequestFailed
}

type DevRequestKind string

const (
	DevRequestNewScraper   DevRequestKind = "new_scraper"
	DevRequestRegeneration DevRequestKind = "regeneration"
)

// DevRequest asks for scraper code to be written or regenerated for a source.
// Filed by the automation sweep or manually.
type DevRequest struct {
	ID        int64            `json:"id" db:"id"`
	SourceID  uuid.UUID        `json:"source_id" db:"source_id"`
	Kind      DevRequestKind   `json:"kind" db:"kind"`
	Status    DevRequestStatus `json:"status" db:"status"`
	Priority  int              `json:"priority" db:"priority"` // higher first
	Notes     string           `json:"notes" db:"notes"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}
