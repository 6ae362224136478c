package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"campscout/config"
	"campscout/storage"
)

// Notifier runs the full fan-out: detect events, build per-family digests,
// send them, and mark everything consumed.
type Notifier struct {
	store    *storage.PostgresStore
	detector *Detector
	mailer   Mailer
}

func NewNotifier(store *storage.PostgresStore, cfg config.PipelineConfig, mailer Mailer) *Notifier {
	return &Notifier{
		store:    store,
		detector: NewDetector(store, cfg),
		mailer:   mailer,
	}
}

// Run performs one notification pass. Send failures are recorded on the
// notification record and never retried within the pass; the dedup row
// stays so the family is not double-notified by a later pass. Rows whose
// send was never attempted are picked back up by the next detection pass.
func (n *Notifier) Run(ctx context.Context) error {
	byFamily, changeIDs, err := n.detector.PendingDigests(ctx)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	sent := 0
	for familyID, items := range byFamily {
		// A lookup failure scopes to this family; the others still get
		// their digests, and this family's records stay retryable.
		family, err := n.store.GetFamily(ctx, familyID)
		if err != nil {
			log.Printf("Warning: failed to load family %s, skipping digest: %v", familyID, err)
			continue
		}
		if family == nil {
			continue
		}
		city, err := n.store.GetCity(ctx, family.CityID)
		if err != nil {
			log.Printf("Warning: failed to load city for family %s, skipping digest: %v", familyID, err)
			continue
		}
		if city == nil {
			log.Printf("Warning: family %s has unknown city, skipping digest", family.ID)
			continue
		}

		subject, text, html := BuildDigest(city, family, items)
		sendErr := n.mailer.Send(city.FromAddress, family.Email, subject, text, html)

		now := time.Now()
		for _, item := range items {
			if sendErr != nil {
				if err := n.store.MarkNotificationFailed(ctx, item.RecordID, sendErr.Error()); err != nil {
					log.Printf("Warning: failed to record send failure: %v", err)
				}
				continue
			}
			if err := n.store.MarkNotificationSent(ctx, item.RecordID, now); err != nil {
				log.Printf("Warning: failed to mark notification sent: %v", err)
			}
		}

		if sendErr != nil {
			log.Printf("Warning: digest to %s failed: %v", family.Email, sendErr)
			continue
		}
		sent++
	}

	if err := n.store.MarkChangesNotified(ctx, changeIDs); err != nil {
		return fmt.Errorf("mark changes notified: %w", err)
	}
	if len(byFamily) > 0 {
		log.Printf("Notification pass: %d digests sent to %d families", sent, len(byFamily))
	}
	return nil
}
