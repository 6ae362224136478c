package models

import (
	"time"

	"github.com/google/uuid"
)

// Family is the registering household account.
type Family struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	Name               string    `json:"name" db:"name"`
	CityID             uuid.UUID `json:"city_id" db:"city_id"`
	AvailabilityAlerts bool      `json:"availability_alerts" db:"availability_alerts"`
	Premium            bool      `json:"premium" db:"premium"` // cached advisory flag, authoritative check is external
	BillingCustomerID  string    `json:"billing_customer_id" db:"billing_customer_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Child belongs to a family.
type Child struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FamilyID  uuid.UUID `json:"family_id" db:"family_id"`
	Name      string    `json:"name" db:"name"`
	BirthYear int       `json:"birth_year" db:"birth_year"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RegistrationStatus string

const (
	RegistrationInterested RegistrationStatus = "interested"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// Registration links a child to a session. Capacity changes on the session
// are mutated transactionally alongside registration status transitions.
type Registration struct {
	ID               uuid.UUID          `json:"id" db:"id"`
	FamilyID         uuid.UUID          `json:"family_id" db:"family_id"`
	ChildID          uuid.UUID          `json:"child_id" db:"child_id"`
	SessionID        uuid.UUID          `json:"session_id" db:"session_id"`
	Status           RegistrationStatus `json:"status" db:"status"`
	WaitlistPosition *int               `json:"waitlist_position" db:"waitlist_position"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" db:"updated_at"`
}

// Principal is the authenticated caller, resolved once per request and
// passed down explicitly.
type Principal struct {
	FamilyID uuid.UUID
	Email    string
	Admin    bool
}

// Owns reports whether the principal may act on the given family's data.
func (p Principal) Owns(familyID uuid.UUID) bool {
	return p.Admin || p.FamilyID == familyID
}
