package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

func (s *PostgresStore) UpsertMediaAsset(ctx context.Context, m *models.MediaAsset) error {
	query := `
		INSERT INTO media_assets (id, original_url, category, storage_key, content_hash, mime_type, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (original_url) DO UPDATE SET
			storage_key = COALESCE(EXCLUDED.storage_key, media_assets.storage_key),
			content_hash = COALESCE(NULLIF(EXCLUDED.content_hash, ''), media_assets.content_hash),
			status = EXCLUDED.status,
			attempts = EXCLUDED.attempts
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		m.ID, m.OriginalURL, m.Category, m.StorageKey, m.ContentHash, m.MimeType, m.Status, m.Attempts, m.CreatedAt,
	).Scan(&m.ID)
}

func (s *PostgresStore) GetMediaAssetByURL(ctx context.Context, url string) (*models.MediaAsset, error) {
	query := `
		SELECT id, original_url, category, storage_key, content_hash, mime_type, status, attempts, created_at
		FROM media_assets WHERE original_url = $1`

	var m models.MediaAsset
	err := s.pool.QueryRow(ctx, query, url).Scan(
		&m.ID, &m.OriginalURL, &m.Category, &m.StorageKey, &m.ContentHash, &m.MimeType, &m.Status, &m.Attempts, &m.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) GetPendingMediaAssets(ctx context.Context, limit int) ([]models.MediaAsset, error) {
	query := `
		SELECT id, original_url, category, storage_key, content_hash, mime_type, status, attempts, created_at
		FROM media_assets
		WHERE status = 'pending' AND attempts < 3
		ORDER BY created_at
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.MediaAsset
	for rows.Next() {
		var m models.MediaAsset
		if err := rows.Scan(
			&m.ID, &m.OriginalURL, &m.Category, &m.StorageKey, &m.ContentHash, &m.MimeType, &m.Status, &m.Attempts, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		assets = append(assets, m)
	}
	return assets, rows.Err()
}

func (s *PostgresStore) UpdateMediaAssetStatus(ctx context.Context, id uuid.UUID, status string, storageKey *string, contentHash string, attempts int) error {
	query := `
		UPDATE media_assets SET
			status = $2, storage_key = COALESCE($3, storage_key),
			content_hash = COALESCE(NULLIF($4, ''), content_hash), attempts = $5
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status, storageKey, contentHash, attempts)
	return err
}
