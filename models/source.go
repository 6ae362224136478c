package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionType selects how a source's pages are turned into raw sessions.
type ExtractionType string

const (
	ExtractionRoutine     ExtractionType = "routine"     // reusable named routine
	ExtractionDeclarative ExtractionType = "declarative" // selector config
	ExtractionAPI         ExtractionType = "api"         // JSON endpoint + field map
	ExtractionRender      ExtractionType = "render"      // external render service + selector config
)

// ExtractionMethod is the tagged union stored on a source. Exactly one of
// Routine, Selectors or API is populated, keyed by Type.
type ExtractionMethod struct {
	Type      ExtractionType     `yaml:"type" json:"type"`
	Routine   string             `yaml:"routine,omitempty" json:"routine,omitempty"`
	Selectors *SelectorConfig    `yaml:"selectors,omitempty" json:"selectors,omitempty"`
	API       *APIExtractionSpec `yaml:"api,omitempty" json:"api,omitempty"`
}

// IsZero reports whether no extraction method is configured.
func (m *ExtractionMethod) IsZero() bool {
	return m == nil || m.Type == ""
}

// SelectorConfig is a declarative scraper: a list selector plus per-field
// selectors evaluated relative to each list item.
type SelectorConfig struct {
	ListSelector string            `yaml:"list" json:"list"`
	Fields       map[string]string `yaml:"fields" json:"fields"`
	// Attr overrides read an attribute instead of text, e.g. registration_url: href.
	Attrs map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	// NextPage, when set, is followed until absent or MaxPages is hit.
	NextPage string `yaml:"next_page,omitempty" json:"next_page,omitempty"`
	MaxPages int    `yaml:"max_pages,omitempty" json:"max_pages,omitempty"`
}

// APIExtractionSpec extracts sessions from a JSON endpoint.
type APIExtractionSpec struct {
	Endpoint  string            `yaml:"endpoint" json:"endpoint"`
	Method    string            `yaml:"method,omitempty" json:"method,omitempty"`
	ItemsPath string            `yaml:"items_path" json:"items_path"`
	Fields    map[string]string `yaml:"fields" json:"fields"`
	PageParam string            `yaml:"page_param,omitempty" json:"page_param,omitempty"`
	PageSize  int               `yaml:"page_size,omitempty" json:"page_size,omitempty"`
}

// QualityTier buckets a source by the average completeness of its sessions.
type QualityTier string

const (
	QualityHigh   QualityTier = "high"
	QualityMedium QualityTier = "medium"
	QualityLow    QualityTier = "low"
)

// ScraperHealth tracks run outcomes for a source.
type ScraperHealth struct {
	ConsecutiveFailures int        `json:"consecutive_failures" db:"consecutive_failures"`
	TotalRuns           int        `json:"total_runs" db:"total_runs"`
	SuccessfulRuns      int        `json:"successful_runs" db:"successful_runs"`
	SuccessRate         float64    `json:"success_rate" db:"success_rate"`
	LastError           string     `json:"last_error" db:"last_error"`
	LastRunAt           *time.Time `json:"last_run_at" db:"last_run_at"`
	NeedsRegeneration   bool       `json:"needs_regeneration" db:"needs_regeneration"`
}

// ScrapeSource is one external website being monitored for camp sessions.
type ScrapeSource struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	URL            string            `json:"url" db:"url"`
	SecondaryURLs  []string          `json:"secondary_urls" db:"secondary_urls"`
	OrganizationID *uuid.UUID        `json:"organization_id" db:"organization_id"` // nil for orphan sources from discovery
	CityID         uuid.UUID         `json:"city_id" db:"city_id"`
	Name           string            `json:"name" db:"name"`
	Method         *ExtractionMethod `json:"method" db:"method"`
	Health         ScraperHealth     `json:"health"`
	CadenceHours   int               `json:"cadence_hours" db:"cadence_hours"`
	NextDueAt      *time.Time        `json:"next_due_at" db:"next_due_at"`
	Active         bool              `json:"active" db:"active"`
	SessionCount   int               `json:"session_count" db:"session_count"`
	PendingCount   int               `json:"pending_count" db:"pending_count"`
	QualityScore   float64           `json:"quality_score" db:"quality_score"`
	QualityTier    QualityTier       `json:"quality_tier" db:"quality_tier"`
	DiscoveredBy   string            `json:"discovered_by" db:"discovered_by"` // manual, crawl, feed, search
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// CanActivate reports whether the source may be switched active.
// A source without an extraction method must never run.
func (s *ScrapeSource) CanActivate() bool {
	return !s.Method.IsZero()
}
