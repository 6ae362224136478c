package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"campscout/identity"
	"campscout/models"
	"campscout/storage"
)

// ImportStats summarizes one job's worth of candidate processing.
type ImportStats struct {
	Found     int
	Created   int
	Updated   int
	Unchanged int
	Pending   int
	Removed   int
}

// Importer turns validated scrape output into canonical sessions and
// change records.
type Importer struct {
	store     *storage.PostgresStore
	matcher   *Matcher
	media     *MediaService
	threshold int // minimum completeness to import directly
	season    int // year assumed for dates scraped without one
}

func NewImporter(store *storage.PostgresStore, media *MediaService, threshold, season int) *Importer {
	return &Importer{
		store:     store,
		matcher:   NewMatcher(store),
		media:     media,
		threshold: threshold,
		season:    season,
	}
}

// ProcessRaw validates and imports a single scraped record. Records below
// the import threshold are parked as pending sessions instead of being
// imported. seen collects the session IDs observed this job, for removal
// detection afterwards.
func (im *Importer) ProcessRaw(ctx context.Context, source *models.ScrapeSource, jobID int64, raw *models.RawSession, seen map[uuid.UUID]bool, stats *ImportStats) error {
	stats.Found++

	candidate, fieldErrors := ValidateRaw(raw, im.season)
	if candidate.Completeness < im.threshold || candidate.Name == "" || candidate.StartDate.IsZero() {
		if err := im.parkPending(ctx, source, jobID, raw, candidate, fieldErrors); err != nil {
			return err
		}
		stats.Pending++
		return nil
	}

	existing, err := im.matcher.Match(ctx, source.ID, candidate)
	if err != nil {
		return err
	}

	if existing == nil {
		sess, err := im.createSession(ctx, source, jobID, candidate)
		if err != nil {
			return err
		}
		seen[sess.ID] = true
		stats.Created++
		return nil
	}

	seen[existing.ID] = true
	changed, err := im.updateSession(ctx, source, jobID, existing, candidate)
	if err != nil {
		return err
	}
	if changed {
		stats.Updated++
	} else {
		stats.Unchanged++
	}
	return nil
}

func (im *Importer) parkPending(ctx context.Context, source *models.ScrapeSource, jobID int64, raw *models.RawSession, candidate *models.CandidateSession, fieldErrors []models.FieldError) error {
	parsed, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("encode candidate: %w", err)
	}

	pending := &models.PendingSession{
		ID:           uuid.New(),
		SourceID:     source.ID,
		JobID:        &jobID,
		Name:         raw.Name,
		RawPayload:   raw.Data,
		Parsed:       parsed,
		FieldErrors:  fieldErrors,
		Completeness: candidate.Completeness,
		Status:       models.PendingStatusNew,
		CreatedAt:    time.Now(),
	}
	if err := im.store.CreatePendingSession(ctx, pending); err != nil {
		return err
	}
	return im.store.AdjustSourceCounts(ctx, source.ID, 0, 1)
}

func (im *Importer) createSession(ctx context.Context, source *models.ScrapeSource, jobID int64, c *models.CandidateSession) (*models.Session, error) {
	camp, err := im.resolveCamp(ctx, source, c)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &models.Session{
		ID:              uuid.New(),
		CampID:          camp.ID,
		OrganizationID:  source.OrganizationID,
		CityID:          source.CityID,
		SourceID:        &source.ID,
		NaturalKey:      identity.SessionKey(source.ID, c.Name, c.StartDate, c.EndDate),
		Name:            c.Name,
		Description:     c.Description,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		DropOff:         c.DropOff,
		PickUp:          c.PickUp,
		PriceCents:      c.PriceCents,
		AgeMin:          c.AgeMin,
		AgeMax:          c.AgeMax,
		Capacity:        c.Capacity,
		Status:          scrapedStatus(c),
		RegistrationURL: c.RegistrationURL,
		Completeness:    c.Completeness,
		MissingFields:   c.MissingFields,
		Provenance:      models.ProvenanceScraped,
		LastSeenAt:      &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := im.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	if err := im.recordChange(ctx, source.ID, sess.ID, jobID, models.ChangeSessionAdded, "", "", string(sess.Status)); err != nil {
		return nil, err
	}
	if err := im.store.AdjustSourceCounts(ctx, source.ID, 1, 0); err != nil {
		return nil, err
	}
	if err := im.store.AdjustCampCounts(ctx, camp.ID, 1); err != nil {
		return nil, err
	}
	im.recordSnapshot(ctx, sess.ID, c)
	im.enqueueImage(ctx, c.ImageURL)
	return sess, nil
}

// updateSession diffs a matched session against the fresh candidate,
// persists changes and returns whether anything material changed.
func (im *Importer) updateSession(ctx context.Context, source *models.ScrapeSource, jobID int64, sess *models.Session, c *models.CandidateSession) (bool, error) {
	var changes []*models.ScrapeChange
	record := func(t models.ChangeType, field, oldV, newV string) {
		changes = append(changes, &models.ScrapeChange{
			SourceID:  source.ID,
			SessionID: sess.ID,
			JobID:     &jobID,
			Type:      t,
			Field:     field,
			OldValue:  oldV,
			NewValue:  newV,
			CreatedAt: time.Now(),
		})
	}

	if c.PriceCents > 0 && c.PriceCents != sess.PriceCents {
		record(models.ChangePriceChanged, "price_cents",
			strconv.FormatInt(sess.PriceCents, 10), strconv.FormatInt(c.PriceCents, 10))
		sess.PriceCents = c.PriceCents
	}

	if !c.StartDate.Equal(sess.StartDate) || !c.EndDate.Equal(sess.EndDate) {
		record(models.ChangeDatesChanged, "dates",
			dateRange(sess.StartDate, sess.EndDate), dateRange(c.StartDate, c.EndDate))
		sess.StartDate = c.StartDate
		sess.EndDate = c.EndDate
	}

	if next := scrapedStatus(c); next != sess.Status && models.CanTransitionSession(sess.Status, next) {
		record(models.ChangeStatusChanged, "status", string(sess.Status), string(next))
		sess.Status = next
	}

	// Fill-only fields: a scrape can improve a session but never blank it.
	if c.Description != "" {
		sess.Description = c.Description
	}
	if c.RegistrationURL != "" {
		sess.RegistrationURL = c.RegistrationURL
	}
	if c.DropOff != "" {
		sess.DropOff = c.DropOff
	}
	if c.PickUp != "" {
		sess.PickUp = c.PickUp
	}
	if c.AgeMin > 0 {
		sess.AgeMin, sess.AgeMax = c.AgeMin, c.AgeMax
	}
	if c.Capacity > 0 {
		sess.Capacity = c.Capacity
	}

	now := time.Now()
	sess.LastSeenAt = &now
	sess.NaturalKey = identity.SessionKey(source.ID, c.Name, c.StartDate, c.EndDate)
	sess.Name = c.Name
	sess.Completeness, sess.MissingFields = ScoreCompleteness(c)

	if len(changes) == 0 {
		if err := im.store.TouchSessionSeen(ctx, sess.ID, now); err != nil {
			return false, err
		}
		im.recordSnapshot(ctx, sess.ID, c)
		return false, nil
	}

	if err := im.store.UpdateSessionFields(ctx, sess); err != nil {
		return false, err
	}
	for _, ch := range changes {
		if err := im.store.CreateChange(ctx, ch); err != nil {
			return false, err
		}
	}
	im.recordSnapshot(ctx, sess.ID, c)
	im.enqueueImage(ctx, c.ImageURL)
	return true, nil
}

// FinishImport records session_removed changes for sessions of the source
// that the completed job did not observe. Removal never cancels the
// session itself; a vanished listing is a signal, not proof.
func (im *Importer) FinishImport(ctx context.Context, source *models.ScrapeSource, jobID int64, seen map[uuid.UUID]bool, stats *ImportStats) error {
	sessions, err := im.store.GetSessionsForSource(ctx, source.ID)
	if err != nil {
		return err
	}
	removals, err := im.store.LatestRemovalTimes(ctx, source.ID)
	if err != nil {
		return err
	}

	for i := range sessions {
		sess := &sessions[i]
		if seen[sess.ID] || sess.Provenance != models.ProvenanceScraped {
			continue
		}
		if removedAt, ok := removals[sess.ID]; ok && removalStands(sess.LastSeenAt, removedAt) {
			continue
		}
		err := im.recordChange(ctx, source.ID, sess.ID, jobID, models.ChangeSessionRemoved, "", string(sess.Status), "")
		if err != nil {
			return err
		}
		stats.Removed++
	}
	return nil
}

// removalStands reports whether an earlier session_removed change is still
// current. The session has not been seen since the change was recorded, so
// recording another would only duplicate it. A scrape that observes the
// session again advances last_seen_at past the change and makes a future
// disappearance reportable.
func removalStands(lastSeen *time.Time, removedAt time.Time) bool {
	return lastSeen == nil || !lastSeen.After(removedAt)
}

func (im *Importer) resolveCamp(ctx context.Context, source *models.ScrapeSource, c *models.CandidateSession) (*models.Camp, error) {
	name := campName(source, c)
	camp, err := im.store.GetCampByName(ctx, source.CityID, name)
	if err != nil {
		return nil, err
	}
	if camp != nil {
		return camp, nil
	}

	now := time.Now()
	camp = &models.Camp{
		ID:             uuid.New(),
		OrganizationID: source.OrganizationID,
		CityID:         source.CityID,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := im.store.CreateCamp(ctx, camp); err != nil {
		return nil, err
	}
	return camp, nil
}

func (im *Importer) recordChange(ctx context.Context, sourceID, sessionID uuid.UUID, jobID int64, t models.ChangeType, field, oldV, newV string) error {
	return im.store.CreateChange(ctx, &models.ScrapeChange{
		SourceID:  sourceID,
		SessionID: sessionID,
		JobID:     &jobID,
		Type:      t,
		Field:     field,
		OldValue:  oldV,
		NewValue:  newV,
		CreatedAt: time.Now(),
	})
}

// recordSnapshot stores an availability observation when the scrape
// reported one. An observation matching the latest snapshot is skipped so
// the history only records movement. Snapshot failures never fail the
// import.
func (im *Importer) recordSnapshot(ctx context.Context, sessionID uuid.UUID, c *models.CandidateSession) {
	if c.SpotsLeft == nil {
		return
	}
	if latest, err := im.store.GetLatestSnapshot(ctx, sessionID); err == nil && latest != nil && latest.SpotsRemaining == *c.SpotsLeft {
		return
	}
	snap := &models.AvailabilitySnapshot{
		SessionID:      sessionID,
		SpotsRemaining: *c.SpotsLeft,
		RecordedAt:     time.Now(),
	}
	if err := im.store.CreateAvailabilitySnapshot(ctx, snap); err != nil {
		log.Printf("Warning: failed to record availability snapshot for %s: %v", sessionID, err)
	}
}

func (im *Importer) enqueueImage(ctx context.Context, url string) {
	if im.media == nil || url == "" {
		return
	}
	if err := im.media.EnqueueImage(ctx, url); err != nil {
		log.Printf("Warning: failed to enqueue image %s: %v", url, err)
	}
}

// scrapedStatus derives the initial/updated status a scrape implies. A
// listing reporting zero spots is sold out; everything else is active.
func scrapedStatus(c *models.CandidateSession) models.SessionStatus {
	if c.SpotsLeft != nil && *c.SpotsLeft == 0 {
		return models.SessionStatusSoldOut
	}
	return models.SessionStatusActive
}

func campName(source *models.ScrapeSource, c *models.CandidateSession) string {
	if source.Name != "" {
		return source.Name
	}
	return c.Name
}

func dateRange(start, end time.Time) string {
	return start.Format("2006-01-02") + ".." + end.Format("2006-01-02")
}
