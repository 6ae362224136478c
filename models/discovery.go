package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateStatus string

const (
	CandidateStatusNew      CandidateStatus = "new"
	CandidateStatusPromoted CandidateStatus = "promoted" // became a scrape source
	CandidateStatusRejected CandidateStatus = "rejected"
)

// CandidateSite is a URL discovery found that may be a camp organization
// website. Promoted candidates become orphan scrape sources.
type CandidateSite struct {
	ID         int64           `json:"id" db:"id"`
	URL        string          `json:"url" db:"url"`
	Host       string          `json:"host" db:"host"`
	Title      string          `json:"title" db:"title"`
	CityID     uuid.UUID       `json:"city_id" db:"city_id"`
	Score      float64         `json:"score" db:"score"`
	FoundVia   string          `json:"found_via" db:"found_via"` // crawl, feed, search
	SeedURL    string          `json:"seed_url" db:"seed_url"`
	Status     CandidateStatus `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	ReviewedAt *time.Time      `json:"reviewed_at" db:"reviewed_at"`
}
