package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campscout/models"
	"campscout/storage"
)

// MediaService queues scraped images for asynchronous upload to object
// storage, deduplicated by original URL.
type MediaService struct {
	store *storage.PostgresStore
}

func NewMediaService(store *storage.PostgresStore) *MediaService {
	return &MediaService{store: store}
}

// EnqueueImage registers a camp image for upload. Already-known URLs,
// uploaded or in flight, are a no-op.
func (s *MediaService) EnqueueImage(ctx context.Context, originalURL string) error {
	return s.enqueue(ctx, originalURL, models.MediaCategoryCamp)
}

// EnqueueLogo registers an organization logo for upload.
func (s *MediaService) EnqueueLogo(ctx context.Context, originalURL string) error {
	return s.enqueue(ctx, originalURL, models.MediaCategoryLogo)
}

func (s *MediaService) enqueue(ctx context.Context, originalURL, category string) error {
	existing, err := s.store.GetMediaAssetByURL(ctx, originalURL)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	asset := &models.MediaAsset{
		ID:          uuid.New(),
		OriginalURL: originalURL,
		Category:    category,
		Status:      models.MediaStatusPending,
		CreatedAt:   time.Now(),
	}
	return s.store.UpsertMediaAsset(ctx, asset)
}

func (s *MediaService) GetPending(ctx context.Context, limit int) ([]models.MediaAsset, error) {
	return s.store.GetPendingMediaAssets(ctx, limit)
}

func (s *MediaService) MarkUploaded(ctx context.Context, asset *models.MediaAsset, storageKey, contentHash string) error {
	return s.store.UpdateMediaAssetStatus(ctx, asset.ID, models.MediaStatusUploaded, &storageKey, contentHash, asset.Attempts+1)
}

func (s *MediaService) MarkFailed(ctx context.Context, asset *models.MediaAsset) error {
	return s.store.UpdateMediaAssetStatus(ctx, asset.ID, models.MediaStatusFailed, nil, "", asset.Attempts+1)
}
