package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MediaStatusPending  = "pending"
	MediaStatusUploaded = "uploaded"
	MediaStatusFailed   = "failed"
)

const (
	MediaCategoryCamp = "camp"
	MediaCategoryLogo = "logo"
)

// MediaAsset is an image queued for upload to object storage.
// Deduplicated by original URL.
type MediaAsset struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OriginalURL string    `json:"original_url" db:"original_url"`
	Category    string    `json:"category" db:"category"`
	StorageKey  *string   `json:"storage_key" db:"storage_key"` // nil until uploaded
	ContentHash string    `json:"content_hash" db:"content_hash"`
	MimeType    string    `json:"mime_type" db:"mime_type"`
	Status      string    `json:"status" db:"status"`
	Attempts    int       `json:"attempts" db:"attempts"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
