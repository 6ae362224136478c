package models

import (
	"time"

	"github.com/google/uuid"
)

// City is a market the product operates in. Digest emails are branded per city.
type City struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	BrandName   string    `json:"brand_name" db:"brand_name"`     // e.g. "CampScout Seattle"
	FromAddress string    `json:"from_address" db:"from_address"` // digest sender
	Timezone    string    `json:"timezone" db:"timezone"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Organization runs one or more camps.
type Organization struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Website   string     `json:"website" db:"website"`
	Email     string     `json:"email" db:"email"`
	Phone     string     `json:"phone" db:"phone"`
	CityID    uuid.UUID  `json:"city_id" db:"city_id"`
	LogoID    *uuid.UUID `json:"logo_id" db:"logo_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Camp is a named program an organization offers; sessions are its dated runs.
type Camp struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID *uuid.UUID `json:"organization_id" db:"organization_id"`
	CityID         uuid.UUID  `json:"city_id" db:"city_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Category       string     `json:"category" db:"category"` // sports, arts, stem, ...
	ImageID        *uuid.UUID `json:"image_id" db:"image_id"`
	SessionCount   int        `json:"session_count" db:"session_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Location is a physical place where sessions run.
type Location struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CityID    uuid.UUID `json:"city_id" db:"city_id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Lat       *float64  `json:"lat" db:"lat"`
	Lng       *float64  `json:"lng" db:"lng"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
