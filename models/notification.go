package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyRegistrationOpened NotificationType = "registration_opened"
	NotifyLowAvailability    NotificationType = "low_availability"
)

// AvailabilitySnapshot records spots remaining for a session at a point in
// time. The low-availability detector compares consecutive snapshots.
type AvailabilitySnapshot struct {
	ID             int64     `json:"id" db:"id"`
	SessionID      uuid.UUID `json:"session_id" db:"session_id"`
	SpotsRemaining int       `json:"spots_remaining" db:"spots_remaining"`
	RecordedAt     time.Time `json:"recorded_at" db:"recorded_at"`
}

// NotificationRecord deduplicates sends: one row per (family, session, type),
// created before the send and marked afterwards. A second attempt for the
// same triple hits the unique constraint and is skipped.
type NotificationRecord struct {
	ID        int64            `json:"id" db:"id"`
	FamilyID  uuid.UUID        `json:"family_id" db:"family_id"`
	SessionID uuid.UUID        `json:"session_id" db:"session_id"`
	Type      NotificationType `json:"type" db:"type"`
	SentAt    *time.Time       `json:"sent_at" db:"sent_at"`
	SendError string           `json:"send_error" db:"send_error"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// DigestItem is one notification inside a family's digest email.
type DigestItem struct {
	RecordID    int64
	SessionID   uuid.UUID
	SessionName string
	CampName    string
	Type        NotificationType
	StartDate   time.Time
	EndDate     time.Time
	SpotsLeft   int
	DetailURL   string
}
