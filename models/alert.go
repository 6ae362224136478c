package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityError    AlertSeverity = "error"
	SeverityCritical AlertSeverity = "critical"
)

type AlertKind string

const (
	AlertSourceDegraded    AlertKind = "source_degraded"
	AlertNeedsRegeneration AlertKind = "needs_regeneration"
	AlertSourceDisabled    AlertKind = "source_disabled"
	AlertStaleDevRequest   AlertKind = "stale_dev_request"
)

// ScraperAlert is an admin-facing event raised by automation.
// Acknowledgeable exactly once.
type ScraperAlert struct {
	ID             int64         `json:"id" db:"id"`
	SourceID       *uuid.UUID    `json:"source_id" db:"source_id"`
	Kind           AlertKind     `json:"kind" db:"kind"`
	Severity       AlertSeverity `json:"severity" db:"severity"`
	Message        string        `json:"message" db:"message"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at" db:"acknowledged_at"`
	AcknowledgedBy string        `json:"acknowledged_by" db:"acknowledged_by"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}
