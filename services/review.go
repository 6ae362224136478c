package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"campscout/models"
	"campscout/storage"
)

// reviewStore is the slice of the store the operator surface touches.
type reviewStore interface {
	GetPendingSession(ctx context.Context, id uuid.UUID) (*models.PendingSession, error)
	ResolvePendingSession(ctx context.Context, id uuid.UUID, status models.PendingStatus) error
	GetSource(ctx context.Context, id uuid.UUID) (*models.ScrapeSource, error)
	AdjustSourceCounts(ctx context.Context, sourceID uuid.UUID, imported, pending int) error
	GetTopCandidates(ctx context.Context, cityID uuid.UUID, limit int) ([]models.CandidateSite, error)
	AcknowledgeAlert(ctx context.Context, alertID int64, by string) error
	GetDevRequest(ctx context.Context, id int64) (*models.DevRequest, error)
	UpdateDevRequestStatus(ctx context.Context, id int64, status models.DevRequestStatus) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error
	GetJob(ctx context.Context, id int64) (*models.ScrapeJob, error)
	GetActiveJobForSource(ctx context.Context, sourceID uuid.UUID) (*models.ScrapeJob, error)
}

// ReviewService is the operator surface for human-in-the-loop work: the
// pending session queue, discovery candidates, scraper alerts and dev
// requests. Every operation requires an admin principal.
type ReviewService struct {
	store    reviewStore
	importer *Importer
}

func NewReviewService(store reviewStore, importer *Importer) *ReviewService {
	return &ReviewService{store: store, importer: importer}
}

// ApprovePending imports a parked record as a real session. fix, when
// non-nil, replaces the parsed candidate wholesale so the operator can
// correct fields before import; completeness is re-scored either way.
func (r *ReviewService) ApprovePending(ctx context.Context, principal models.Principal, id uuid.UUID, fix *models.CandidateSession) (*models.Session, error) {
	if !principal.Admin {
		return nil, ErrNotOwner
	}

	pending, err := r.store.GetPendingSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.Status != models.PendingStatusNew {
		return nil, ErrNotFound
	}

	candidate := fix
	if candidate == nil {
		candidate = &models.CandidateSession{}
		if err := json.Unmarshal(pending.Parsed, candidate); err != nil {
			return nil, fmt.Errorf("decode parsed candidate: %w", err)
		}
	}
	if candidate.Name == "" || candidate.StartDate.IsZero() {
		return nil, ErrValidation
	}
	candidate.Completeness, candidate.MissingFields = ScoreCompleteness(candidate)

	source, err := r.store.GetSource(ctx, pending.SourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNotFound
	}

	var jobID int64
	if pending.JobID != nil {
		jobID = *pending.JobID
	}
	sess, err := r.importer.createSession(ctx, source, jobID, candidate)
	if err != nil {
		return nil, err
	}

	if err := r.store.ResolvePendingSession(ctx, id, models.PendingStatusReviewed); err != nil {
		return nil, err
	}
	if err := r.store.AdjustSourceCounts(ctx, source.ID, 0, -1); err != nil {
		return nil, err
	}
	return sess, nil
}

// DiscardPending rejects a parked record.
func (r *ReviewService) DiscardPending(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if !principal.Admin {
		return ErrNotOwner
	}
	pending, err := r.store.GetPendingSession(ctx, id)
	if err != nil {
		return err
	}
	if pending == nil || pending.Status != models.PendingStatusNew {
		return ErrNotFound
	}
	if err := r.store.ResolvePendingSession(ctx, id, models.PendingStatusDiscarded); err != nil {
		return err
	}
	return r.store.AdjustSourceCounts(ctx, pending.SourceID, 0, -1)
}

// CandidateQueue lists a city's unreviewed discovery candidates, best
// score first.
func (r *ReviewService) CandidateQueue(ctx context.Context, principal models.Principal, cityID uuid.UUID, limit int) ([]models.CandidateSite, error) {
	if !principal.Admin {
		return nil, ErrNotOwner
	}
	if limit <= 0 {
		limit = 20
	}
	return r.store.GetTopCandidates(ctx, cityID, limit)
}

// AcknowledgeAlert marks an alert as seen by the principal. Acknowledging
// an already-acknowledged alert is rejected.
func (r *ReviewService) AcknowledgeAlert(ctx context.Context, principal models.Principal, alertID int64) error {
	if !principal.Admin {
		return ErrNotOwner
	}
	err := r.store.AcknowledgeAlert(ctx, alertID, principal.Email)
	if err == storage.ErrDuplicate {
		return ErrInvalidTransition
	}
	return err
}

// AdvanceDevRequest moves a dev request through its lifecycle, refusing
// edges the status machine does not allow.
func (r *ReviewService) AdvanceDevRequest(ctx context.Context, principal models.Principal, id int64, to models.DevRequestStatus) error {
	if !principal.Admin {
		return ErrNotOwner
	}
	req, err := r.store.GetDevRequest(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrNotFound
	}
	if !models.CanTransitionDevRequest(req.Status, to) {
		return ErrInvalidTransition
	}
	return r.store.UpdateDevRequestStatus(ctx, id, to)
}

// CancelSession cancels a session directly. Registrations keep their rows;
// capacity and waitlist handling stay with the registration flows.
func (r *ReviewService) CancelSession(ctx context.Context, principal models.Principal, sessionID uuid.UUID) error {
	if !principal.Admin {
		return ErrNotOwner
	}
	sess, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotFound
	}
	if !models.CanTransitionSession(sess.Status, models.SessionStatusCancelled) {
		return ErrInvalidTransition
	}
	return r.store.UpdateSessionStatus(ctx, sessionID, models.SessionStatusCancelled)
}

// JobStatus fetches one scrape job, or the source's active job when jobID
// is zero.
func (r *ReviewService) JobStatus(ctx context.Context, principal models.Principal, jobID int64, sourceID uuid.UUID) (*models.ScrapeJob, error) {
	if !principal.Admin {
		return nil, ErrNotOwner
	}
	if jobID > 0 {
		return r.store.GetJob(ctx, jobID)
	}
	return r.store.GetActiveJobForSource(ctx, sourceID)
}
