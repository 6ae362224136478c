package workers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"campscout/models"
	"campscout/services"
)

const maxImageBytes = 10 << 20

// Uploader stores image bytes and returns nothing but an error; the key is
// chosen by the caller. Satisfied by storage.S3Uploader.
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
}

// NoOpUploader discards uploads, for installs without object storage.
type NoOpUploader struct{}

func (NoOpUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	return nil
}

// MediaWorker downloads queued images and pushes them to object storage.
type MediaWorker struct {
	media     *services.MediaService
	uploader  Uploader
	client    *http.Client
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewMediaWorker(media *services.MediaService, uploader Uploader) *MediaWorker {
	return &MediaWorker{
		media:     media,
		uploader:  uploader,
		client:    &http.Client{Timeout: 30 * time.Second},
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *MediaWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *MediaWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *MediaWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Media worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		case <-w.triggerCh:
			log.Println("Media worker triggered manually")
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *MediaWorker) processBatch(ctx context.Context, batchSize int) {
	assets, err := w.media.GetPending(ctx, batchSize)
	if err != nil {
		log.Printf("Media: query error: %v", err)
		return
	}
	if len(assets) == 0 {
		return
	}

	log.Printf("Media: processing %d pending assets", len(assets))
	uploaded := 0
	for i := range assets {
		if ctx.Err() != nil {
			return
		}
		if err := w.processAsset(ctx, &assets[i]); err != nil {
			log.Printf("Media: %s: %v", assets[i].OriginalURL, err)
			if markErr := w.media.MarkFailed(ctx, &assets[i]); markErr != nil {
				log.Printf("Warning: failed to mark asset failed: %v", markErr)
			}
			continue
		}
		uploaded++
	}
	if uploaded > 0 {
		w.logFunc(models.LogLevelInfo, "media", fmt.Sprintf("uploaded %d images", uploaded))
	}
}

func (w *MediaWorker) processAsset(ctx context.Context, asset *models.MediaAsset) error {
	req, err := http.NewRequestWithContext(ctx, "GET", asset.OriginalURL, nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	hash := sha256.Sum256(data)
	contentHash := hex.EncodeToString(hash[:])
	key := fmt.Sprintf("%s/%s%s", asset.Category, contentHash[:32], extensionFor(contentType))

	if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return w.media.MarkUploaded(ctx, asset, key, contentHash)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
