package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusSoldOut   SessionStatus = "sold_out"
	SessionStatusCancelled SessionStatus = "cancelled"
	SessionStatusCompleted SessionStatus = "completed"
)

// sessionTransitions is the allowed edge set for session status changes.
// cancelled and completed are terminal.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusDraft:   {SessionStatusActive, SessionStatusCancelled, SessionStatusCompleted},
	SessionStatusActive:  {SessionStatusSoldOut, SessionStatusCancelled, SessionStatusCompleted},
	SessionStatusSoldOut: {SessionStatusActive, SessionStatusCancelled, SessionStatusCompleted},
}

// CanTransitionSession reports whether a session may move between statuses.
func CanTransitionSession(from, to SessionStatus) bool {
	if from == to {
		return false
	}
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Provenance records how a session entered the system.
type Provenance string

const (
	ProvenanceScraped  Provenance = "scraped"
	ProvenanceManual   Provenance = "manual"
	ProvenanceEnhanced Provenance = "enhanced"
)

// Session is the canonical camp-offering record.
type Session struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	CampID         uuid.UUID     `json:"camp_id" db:"camp_id"`
	LocationID     *uuid.UUID    `json:"location_id" db:"location_id"`
	OrganizationID *uuid.UUID    `json:"organization_id" db:"organization_id"`
	CityID         uuid.UUID     `json:"city_id" db:"city_id"`
	SourceID       *uuid.UUID    `json:"source_id" db:"source_id"` // scrape source that produced it, if any
	NaturalKey     string        `json:"natural_key" db:"natural_key"`
	Name           string        `json:"name" db:"name"`
	Description    string        `json:"description" db:"description"`
	StartDate      time.Time     `json:"start_date" db:"start_date"`
	EndDate        time.Time     `json:"end_date" db:"end_date"`
	DropOff        string        `json:"drop_off" db:"drop_off"` // "09:00"
	PickUp         string        `json:"pick_up" db:"pick_up"`   // "15:30"
	PriceCents     int64         `json:"price_cents" db:"price_cents"`
	AgeMin         int           `json:"age_min" db:"age_min"`
	AgeMax         int           `json:"age_max" db:"age_max"`
	Capacity       int           `json:"capacity" db:"capacity"`
	EnrolledCount  int           `json:"enrolled_count" db:"enrolled_count"`
	WaitlistCount  int           `json:"waitlist_count" db:"waitlist_count"`
	WaitlistOpen   bool          `json:"waitlist_open" db:"waitlist_open"`
	Status         SessionStatus `json:"status" db:"status"`
	RegistrationURL string       `json:"registration_url" db:"registration_url"`
	Completeness   int           `json:"completeness" db:"completeness"` // 0-100
	MissingFields  []string      `json:"missing_fields" db:"missing_fields"`
	Provenance     Provenance    `json:"provenance" db:"provenance"`
	LastSeenAt     *time.Time    `json:"last_seen_at" db:"last_seen_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// SpotsRemaining returns the number of open spots, never negative.
func (s *Session) SpotsRemaining() int {
	if r := s.Capacity - s.EnrolledCount; r > 0 {
		return r
	}
	return 0
}

// IsFull reports whether enrollment has reached capacity.
func (s *Session) IsFull() bool {
	return s.Capacity > 0 && s.EnrolledCount >= s.Capacity
}

// CapacityStatus returns the status a session should hold after an
// enrollment change. Only active and sold_out participate; any other
// status is returned unchanged.
func CapacityStatus(current SessionStatus, enrolled, capacity int) SessionStatus {
	if current != SessionStatusActive && current != SessionStatusSoldOut {
		return current
	}
	if capacity > 0 && enrolled >= capacity {
		return SessionStatusSoldOut
	}
	return SessionStatusActive
}

// RawSession is what an extractor produces from a page, before validation.
type RawSession struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	StartDate       string          `json:"start_date"` // as scraped, parsed during validation
	EndDate         string          `json:"end_date"`
	DropOff         string          `json:"drop_off"`
	PickUp          string          `json:"pick_up"`
	Price           string          `json:"price"`
	Ages            string          `json:"ages"`
	LocationName    string          `json:"location_name"`
	RegistrationURL string          `json:"registration_url"`
	ImageURL        string          `json:"image_url"`
	Capacity        string          `json:"capacity"`
	SpotsLeft       string          `json:"spots_left"`
	Data            json.RawMessage `json:"data"` // full raw payload for replay
}

// CandidateSession is a validated, parsed scrape record ready for import.
type CandidateSession struct {
	Name            string
	Description     string
	StartDate       time.Time
	EndDate         time.Time
	DropOff         string
	PickUp          string
	PriceCents      int64
	AgeMin          int
	AgeMax          int
	LocationName    string
	RegistrationURL string
	ImageURL        string
	Capacity        int
	SpotsLeft       *int
	Completeness    int
	MissingFields   []string
	Raw             json.RawMessage
}
