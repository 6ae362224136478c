package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"campscout/config"
	"campscout/models"
	"campscout/storage"
)

// Detector finds notification-worthy events: sessions whose registration
// reopened and sessions newly running low on spots.
type Detector struct {
	store *storage.PostgresStore
	cfg   config.PipelineConfig
}

func NewDetector(store *storage.PostgresStore, cfg config.PipelineConfig) *Detector {
	return &Detector{store: store, cfg: cfg}
}

// PendingDigests collects digest items for every family with something to
// hear about, creating the dedup records as it goes. Families already
// notified for a (session, type) pair are skipped by the unique constraint.
// Returns items grouped by family and the change IDs consumed.
func (d *Detector) PendingDigests(ctx context.Context) (map[uuid.UUID][]models.DigestItem, []int64, error) {
	byFamily := make(map[uuid.UUID][]models.DigestItem)

	changeIDs, err := d.collectReopened(ctx, byFamily)
	if err != nil {
		return nil, nil, err
	}
	if err := d.collectLowAvailability(ctx, byFamily); err != nil {
		return nil, nil, err
	}
	return byFamily, changeIDs, nil
}

// collectReopened turns status changes landing on active (from sold_out or
// draft) into registration_opened items for interested families.
func (d *Detector) collectReopened(ctx context.Context, byFamily map[uuid.UUID][]models.DigestItem) ([]int64, error) {
	since := time.Now().Add(-d.cfg.ChangeLookback)
	changes, err := d.store.GetUnnotifiedChanges(ctx, since)
	if err != nil {
		return nil, err
	}

	var consumed []int64
	for _, change := range changes {
		consumed = append(consumed, change.ID)
		if change.Type != models.ChangeStatusChanged {
			continue
		}
		if change.NewValue != string(models.SessionStatusActive) {
			continue
		}
		if change.OldValue != string(models.SessionStatusSoldOut) && change.OldValue != string(models.SessionStatusDraft) {
			continue
		}

		if err := d.fanOut(ctx, change.SessionID, models.NotifyRegistrationOpened, byFamily); err != nil {
			return nil, err
		}
	}
	return consumed, nil
}

// collectLowAvailability scans active sessions with capacity data for a
// drop below the spots threshold.
func (d *Detector) collectLowAvailability(ctx context.Context, byFamily map[uuid.UUID][]models.DigestItem) error {
	sessions, err := d.store.GetActiveSessions(ctx)
	if err != nil {
		return err
	}

	for i := range sessions {
		sess := &sessions[i]
		snaps, err := d.store.GetRecentSnapshots(ctx, sess.ID, 2)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			continue
		}

		var previous *int
		if len(snaps) > 1 {
			previous = &snaps[1].SpotsRemaining
		}
		if !NewlyLow(previous, snaps[0].SpotsRemaining, d.cfg.LowAvailability) {
			continue
		}

		if err := d.fanOut(ctx, sess.ID, models.NotifyLowAvailability, byFamily); err != nil {
			return err
		}
	}
	return nil
}

// NewlyLow reports whether availability just crossed below the threshold.
// A session with no prior snapshot counts as newly low: the first
// observation is the first chance to warn anyone.
func NewlyLow(previous *int, current, threshold int) bool {
	if current >= threshold {
		return false
	}
	return previous == nil || *previous >= threshold
}

// AwaitingSend reports whether a notification record has never had a send
// attempted against it. Only an attempt, successful or not, consumes the
// dedup row.
func AwaitingSend(r *models.NotificationRecord) bool {
	return r.SentAt == nil && r.SendError == ""
}

// fanOut adds a digest item for each interested family not yet notified
// about this (session, type) pair.
func (d *Detector) fanOut(ctx context.Context, sessionID uuid.UUID, kind models.NotificationType, byFamily map[uuid.UUID][]models.DigestItem) error {
	sess, err := d.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	campName := ""
	if camp, err := d.store.GetCamp(ctx, sess.CampID); err == nil && camp != nil {
		campName = camp.Name
	}

	families, err := d.store.GetInterestedFamilies(ctx, sessionID)
	if err != nil {
		return err
	}

	for _, family := range families {
		record := &models.NotificationRecord{
			FamilyID:  family.ID,
			SessionID: sessionID,
			Type:      kind,
			CreatedAt: time.Now(),
		}
		err := d.store.CreateNotificationRecord(ctx, record)
		if err == storage.ErrDuplicate {
			// A row without a send outcome means an earlier pass died
			// between creating it and attempting the send. Pick it back up.
			existing, lookupErr := d.store.GetNotificationRecord(ctx, family.ID, sessionID, kind)
			if lookupErr != nil {
				log.Printf("Warning: failed to load notification record for family %s: %v", family.ID, lookupErr)
				continue
			}
			if existing == nil || !AwaitingSend(existing) {
				continue
			}
			record = existing
		} else if err != nil {
			log.Printf("Warning: failed to create notification record for family %s: %v", family.ID, err)
			continue
		}

		byFamily[family.ID] = append(byFamily[family.ID], models.DigestItem{
			RecordID:    record.ID,
			SessionID:   sessionID,
			SessionName: sess.Name,
			CampName:    campName,
			Type:        kind,
			StartDate:   sess.StartDate,
			EndDate:     sess.EndDate,
			SpotsLeft:   sess.SpotsRemaining(),
			DetailURL:   sess.RegistrationURL,
		})
	}
	return nil
}
