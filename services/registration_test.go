package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

// fakeRegStore drives the enrollment flows in memory. Transactions run
// inline; the lock is moot with a single goroutine.
type fakeRegStore struct {
	children      map[uuid.UUID]*models.Child
	sessions      map[uuid.UUID]*models.Session
	registrations map[uuid.UUID]*models.Registration
}

func newFakeRegStore() *fakeRegStore {
	return &fakeRegStore{
		children:      make(map[uuid.UUID]*models.Child),
		sessions:      make(map[uuid.UUID]*models.Session),
		registrations: make(map[uuid.UUID]*models.Registration),
	}
}

func (f *fakeRegStore) GetChild(_ context.Context, id uuid.UUID) (*models.Child, error) {
	return f.children[id], nil
}

func (f *fakeRegStore) GetRegistration(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	return f.registrations[id], nil
}

func (f *fakeRegStore) GetRegistrationForChild(_ context.Context, childID, sessionID uuid.UUID) (*models.Registration, error) {
	for _, r := range f.registrations {
		if r.ChildID == childID && r.SessionID == sessionID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRegStore) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (f *fakeRegStore) LockSession(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeRegStore) CreateRegistrationTx(_ context.Context, _ pgx.Tx, r *models.Registration) error {
	f.registrations[r.ID] = r
	return nil
}

func (f *fakeRegStore) UpdateRegistrationTx(_ context.Context, _ pgx.Tx, r *models.Registration) error {
	f.registrations[r.ID] = r
	return nil
}

func (f *fakeRegStore) SetSessionEnrollmentTx(_ context.Context, _ pgx.Tx, id uuid.UUID, enrolled, waitlisted int, status models.SessionStatus) error {
	sess := f.sessions[id]
	sess.EnrolledCount = enrolled
	sess.WaitlistCount = waitlisted
	sess.Status = status
	return nil
}

func (f *fakeRegStore) FirstWaitlistedTx(_ context.Context, _ pgx.Tx, sessionID uuid.UUID) (*models.Registration, error) {
	var head *models.Registration
	for _, r := range f.registrations {
		if r.SessionID != sessionID || r.Status != models.RegistrationWaitlisted {
			continue
		}
		if head == nil || *r.WaitlistPosition < *head.WaitlistPosition {
			head = r
		}
	}
	return head, nil
}

func (f *fakeRegStore) addChild(familyID uuid.UUID) *models.Child {
	child := &models.Child{ID: uuid.New(), FamilyID: familyID}
	f.children[child.ID] = child
	return child
}

func (f *fakeRegStore) addSession(capacity, enrolled int, status models.SessionStatus, waitlistOpen bool) *models.Session {
	sess := &models.Session{
		ID:            uuid.New(),
		Status:        status,
		Capacity:      capacity,
		EnrolledCount: enrolled,
		WaitlistOpen:  waitlistOpen,
	}
	f.sessions[sess.ID] = sess
	return sess
}

func TestRegisterFullSessionWithoutWaitlist(t *testing.T) {
	store := newFakeRegStore()
	svc := NewRegistrationService(store, nil)

	familyID := uuid.New()
	child := store.addChild(familyID)
	sess := store.addSession(10, 10, models.SessionStatusSoldOut, false)

	principal := models.Principal{FamilyID: familyID}
	if _, err := svc.Register(context.Background(), principal, child.ID, sess.ID); err != ErrSessionFull {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if sess.EnrolledCount != 10 {
		t.Fatalf("failed registration must not change enrollment, got %d", sess.EnrolledCount)
	}
}

func TestRegisterFullSessionWaitlists(t *testing.T) {
	store := newFakeRegStore()
	svc := NewRegistrationService(store, nil)

	familyID := uuid.New()
	child := store.addChild(familyID)
	sess := store.addSession(10, 10, models.SessionStatusSoldOut, true)

	reg, err := svc.Register(context.Background(), models.Principal{FamilyID: familyID}, child.ID, sess.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Status != models.RegistrationWaitlisted {
		t.Fatalf("expected waitlisted, got %s", reg.Status)
	}
	if reg.WaitlistPosition == nil || *reg.WaitlistPosition != 1 {
		t.Fatalf("expected waitlist position 1, got %v", reg.WaitlistPosition)
	}
	if sess.WaitlistCount != 1 || sess.EnrolledCount != 10 {
		t.Fatalf("counts off: enrolled=%d waitlisted=%d", sess.EnrolledCount, sess.WaitlistCount)
	}
}

func TestRegisterLastSpotFlipsSoldOut(t *testing.T) {
	store := newFakeRegStore()
	svc := NewRegistrationService(store, nil)

	familyID := uuid.New()
	child := store.addChild(familyID)
	sess := store.addSession(10, 9, models.SessionStatusActive, false)

	reg, err := svc.Register(context.Background(), models.Principal{FamilyID: familyID}, child.ID, sess.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Status != models.RegistrationRegistered {
		t.Fatalf("expected registered, got %s", reg.Status)
	}
	if sess.EnrolledCount != 10 || sess.Status != models.SessionStatusSoldOut {
		t.Fatalf("last spot should sell out: enrolled=%d status=%s", sess.EnrolledCount, sess.Status)
	}
}

func TestRegisterOwnershipAndDuplicates(t *testing.T) {
	store := newFakeRegStore()
	svc := NewRegistrationService(store, nil)

	familyID := uuid.New()
	child := store.addChild(familyID)
	sess := store.addSession(10, 0, models.SessionStatusActive, false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.Principal{FamilyID: uuid.New()}, child.ID, sess.ID); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner for another family, got %v", err)
	}

	owner := models.Principal{FamilyID: familyID}
	if _, err := svc.Register(ctx, owner, child.ID, sess.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, owner, child.ID, sess.ID); err != ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestCancelFreesSpotAndReopens(t *testing.T) {
	store := newFakeRegStore()
	svc := NewRegistrationService(store, nil)

	familyID := uuid.New()
	child := store.addChild(familyID)
	sess := store.addSession(10, 9, models.SessionStatusActive, false)
	ctx := context.Background()
	owner := models.Principal{FamilyID: familyID}

	reg, err := svc.Register(ctx, owner, child.ID, sess.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Status != models.SessionStatusSoldOut {
		t.Fatalf("setup: expected sold_out, got %s", sess.Status)
	}

	if err := svc.Cancel(ctx, owner, reg.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if sess.EnrolledCount != 9 {
		t.Fatalf("cancel should free exactly one spot, enrolled=%d", sess.EnrolledCount)
	}
	if sess.Status != models.SessionStatusActive {
		t.Fatalf("freed capacity should reopen the session, got %s", sess.Status)
	}
	if reg.Status != models.RegistrationCancelled {
		t.Fatalf("expected cancelled, got %s", reg.Status)
	}

	if err := svc.Cancel(ctx, owner, reg.ID); err != ErrInvalidTransition {
		t.Fatalf("double cancel should be rejected, got %v", err)
	}
}

func TestPromoteFromWaitlist(t *testing.T) {
	store := newFakeRegStore()
	svc := NewRegistrationService(store, nil)

	familyID := uuid.New()
	child := store.addChild(familyID)
	sess := store.addSession(10, 10, models.SessionStatusSoldOut, true)
	ctx := context.Background()

	waiting, err := svc.Register(ctx, models.Principal{FamilyID: familyID}, child.ID, sess.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.PromoteFromWaitlist(ctx, models.Principal{FamilyID: familyID}, sess.ID); err != ErrNotOwner {
		t.Fatalf("non-admin promote should be rejected, got %v", err)
	}

	admin := models.Principal{Admin: true}
	if _, err := svc.PromoteFromWaitlist(ctx, admin, sess.ID); err != ErrSessionFull {
		t.Fatalf("promote into a full session should fail, got %v", err)
	}

	// A cancellation elsewhere frees a spot.
	sess.EnrolledCount = 9
	sess.Status = models.SessionStatusActive

	promoted, err := svc.PromoteFromWaitlist(ctx, admin, sess.ID)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.ID != waiting.ID || promoted.Status != models.RegistrationRegistered {
		t.Fatalf("head of waitlist should be registered, got %s", promoted.Status)
	}
	if promoted.WaitlistPosition != nil {
		t.Fatal("promoted registration should drop its waitlist position")
	}
	if sess.EnrolledCount != 10 || sess.WaitlistCount != 0 {
		t.Fatalf("counts off after promote: enrolled=%d waitlisted=%d", sess.EnrolledCount, sess.WaitlistCount)
	}
	if sess.Status != models.SessionStatusSoldOut {
		t.Fatalf("promoting into the last spot should sell out, got %s", sess.Status)
	}
}
