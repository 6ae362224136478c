package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"campscout/models"
	"campscout/storage"
)

// fakeReviewStore backs the operator surface in memory.
type fakeReviewStore struct {
	pending      map[uuid.UUID]*models.PendingSession
	sessions     map[uuid.UUID]*models.Session
	devRequests  map[int64]*models.DevRequest
	acked        map[int64]string
	pendingDelta int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{
		pending:     make(map[uuid.UUID]*models.PendingSession),
		sessions:    make(map[uuid.UUID]*models.Session),
		devRequests: make(map[int64]*models.DevRequest),
		acked:       make(map[int64]string),
	}
}

func (f *fakeReviewStore) GetPendingSession(_ context.Context, id uuid.UUID) (*models.PendingSession, error) {
	return f.pending[id], nil
}

func (f *fakeReviewStore) ResolvePendingSession(_ context.Context, id uuid.UUID, status models.PendingStatus) error {
	f.pending[id].Status = status
	return nil
}

func (f *fakeReviewStore) GetSource(_ context.Context, id uuid.UUID) (*models.ScrapeSource, error) {
	return nil, nil
}

func (f *fakeReviewStore) AdjustSourceCounts(_ context.Context, _ uuid.UUID, _, pending int) error {
	f.pendingDelta += pending
	return nil
}

func (f *fakeReviewStore) GetTopCandidates(_ context.Context, _ uuid.UUID, _ int) ([]models.CandidateSite, error) {
	return nil, nil
}

func (f *fakeReviewStore) AcknowledgeAlert(_ context.Context, alertID int64, by string) error {
	if _, ok := f.acked[alertID]; ok {
		return storage.ErrDuplicate
	}
	f.acked[alertID] = by
	return nil
}

func (f *fakeReviewStore) GetDevRequest(_ context.Context, id int64) (*models.DevRequest, error) {
	return f.devRequests[id], nil
}

func (f *fakeReviewStore) UpdateDevRequestStatus(_ context.Context, id int64, status models.DevRequestStatus) error {
	f.devRequests[id].Status = status
	return nil
}

func (f *fakeReviewStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeReviewStore) UpdateSessionStatus(_ context.Context, id uuid.UUID, status models.SessionStatus) error {
	f.sessions[id].Status = status
	return nil
}

func (f *fakeReviewStore) GetJob(_ context.Context, _ int64) (*models.ScrapeJob, error) {
	return nil, nil
}

func (f *fakeReviewStore) GetActiveJobForSource(_ context.Context, _ uuid.UUID) (*models.ScrapeJob, error) {
	return nil, nil
}

func TestAcknowledgeAlertOnce(t *testing.T) {
	store := newFakeReviewStore()
	svc := NewReviewService(store, nil)
	ctx := context.Background()
	admin := models.Principal{Admin: true, Email: "ops@example.com"}

	if err := svc.AcknowledgeAlert(ctx, models.Principal{}, 7); err != ErrNotOwner {
		t.Fatalf("non-admin ack should be rejected, got %v", err)
	}
	if err := svc.AcknowledgeAlert(ctx, admin, 7); err != nil {
		t.Fatalf("first ack: %v", err)
	}
	if store.acked[7] != "ops@example.com" {
		t.Fatalf("ack not attributed, got %q", store.acked[7])
	}
	if err := svc.AcknowledgeAlert(ctx, admin, 7); err != ErrInvalidTransition {
		t.Fatalf("second ack should be rejected, got %v", err)
	}
}

func TestAdvanceDevRequest(t *testing.T) {
	store := newFakeReviewStore()
	svc := NewReviewService(store, nil)
	ctx := context.Background()
	admin := models.Principal{Admin: true}

	store.devRequests[1] = &models.DevRequest{ID: 1, Status: models.DevRequestPending}

	if err := svc.AdvanceDevRequest(ctx, admin, 1, models.DevRequestCompleted); err != ErrInvalidTransition {
		t.Fatalf("pending cannot jump to completed, got %v", err)
	}
	if err := svc.AdvanceDevRequest(ctx, admin, 1, models.DevRequestInProgress); err != nil {
		t.Fatalf("pending -> in_progress: %v", err)
	}
	if store.devRequests[1].Status != models.DevRequestInProgress {
		t.Fatalf("status not persisted, got %s", store.devRequests[1].Status)
	}
	if err := svc.AdvanceDevRequest(ctx, admin, 99, models.DevRequestFailed); err != ErrNotFound {
		t.Fatalf("unknown request should be ErrNotFound, got %v", err)
	}
}

func TestCancelSessionGuardsTerminalStates(t *testing.T) {
	store := newFakeReviewStore()
	svc := NewReviewService(store, nil)
	ctx := context.Background()
	admin := models.Principal{Admin: true}

	done := &models.Session{ID: uuid.New(), Status: models.SessionStatusCompleted}
	store.sessions[done.ID] = done
	if err := svc.CancelSession(ctx, admin, done.ID); err != ErrInvalidTransition {
		t.Fatalf("completed session cannot be cancelled, got %v", err)
	}

	active := &models.Session{ID: uuid.New(), Status: models.SessionStatusActive}
	store.sessions[active.ID] = active
	if err := svc.CancelSession(ctx, admin, active.ID); err != nil {
		t.Fatalf("cancel active: %v", err)
	}
	if active.Status != models.SessionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", active.Status)
	}
}

func TestDiscardPending(t *testing.T) {
	store := newFakeReviewStore()
	svc := NewReviewService(store, nil)
	ctx := context.Background()
	admin := models.Principal{Admin: true}

	id := uuid.New()
	store.pending[id] = &models.PendingSession{ID: id, Status: models.PendingStatusNew}

	if err := svc.DiscardPending(ctx, models.Principal{}, id); err != ErrNotOwner {
		t.Fatalf("non-admin discard should be rejected, got %v", err)
	}
	if err := svc.DiscardPending(ctx, admin, id); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if store.pending[id].Status != models.PendingStatusDiscarded {
		t.Fatalf("expected discarded, got %s", store.pending[id].Status)
	}
	if store.pendingDelta != -1 {
		t.Fatalf("discard should decrement the pending count, delta=%d", store.pendingDelta)
	}

	if err := svc.DiscardPending(ctx, admin, id); err != ErrNotFound {
		t.Fatalf("already-resolved record should be ErrNotFound, got %v", err)
	}
}
