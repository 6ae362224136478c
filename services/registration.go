package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campscout/models"
)

// registrationStore is the slice of the store the enrollment flows touch.
type registrationStore interface {
	GetChild(ctx context.Context, id uuid.UUID) (*models.Child, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	GetRegistrationForChild(ctx context.Context, childID, sessionID uuid.UUID) (*models.Registration, error)
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	LockSession(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Session, error)
	CreateRegistrationTx(ctx context.Context, tx pgx.Tx, r *models.Registration) error
	UpdateRegistrationTx(ctx context.Context, tx pgx.Tx, r *models.Registration) error
	SetSessionEnrollmentTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, enrolled, waitlisted int, status models.SessionStatus) error
	FirstWaitlistedTx(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (*models.Registration, error)
}

// RegistrationService handles the family-facing enrollment flows. All
// capacity math runs inside a transaction holding a row lock on the
// session, so concurrent registrations for the last spot serialize.
type RegistrationService struct {
	store   registrationStore
	billing *BillingService
}

func NewRegistrationService(store registrationStore, billing *BillingService) *RegistrationService {
	return &RegistrationService{store: store, billing: billing}
}

// Register enrolls a child in a session. When the session is full and its
// waitlist is open the child is waitlisted instead; the returned
// registration's status tells the caller which happened.
func (r *RegistrationService) Register(ctx context.Context, principal models.Principal, childID, sessionID uuid.UUID) (*models.Registration, error) {
	child, err := r.store.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrNotFound
	}
	if !principal.Owns(child.FamilyID) {
		return nil, ErrNotOwner
	}

	existing, err := r.store.GetRegistrationForChild(ctx, childID, sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.RegistrationInterested {
		return nil, ErrAlreadyRegistered
	}

	var reg *models.Registration
	err = r.store.WithTx(ctx, func(tx pgx.Tx) error {
		sess, err := r.store.LockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNotFound
		}
		if sess.Status != models.SessionStatusActive && sess.Status != models.SessionStatusSoldOut {
			return ErrSessionClosed
		}

		now := time.Now()
		if existing != nil {
			reg = existing
		} else {
			reg = &models.Registration{
				ID:        uuid.New(),
				FamilyID:  child.FamilyID,
				ChildID:   childID,
				SessionID: sessionID,
				CreatedAt: now,
			}
		}
		reg.UpdatedAt = now

		enrolled, waitlisted := sess.EnrolledCount, sess.WaitlistCount
		if sess.IsFull() {
			if !sess.WaitlistOpen {
				return ErrSessionFull
			}
			waitlisted++
			pos := waitlisted
			reg.Status = models.RegistrationWaitlisted
			reg.WaitlistPosition = &pos
		} else {
			enrolled++
			reg.Status = models.RegistrationRegistered
			reg.WaitlistPosition = nil
		}

		if existing != nil {
			if err := r.store.UpdateRegistrationTx(ctx, tx, reg); err != nil {
				return err
			}
		} else if err := r.store.CreateRegistrationTx(ctx, tx, reg); err != nil {
			return err
		}

		status := models.CapacityStatus(sess.Status, enrolled, sess.Capacity)
		return r.store.SetSessionEnrollmentTx(ctx, tx, sess.ID, enrolled, waitlisted, status)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// MarkInterested records intent without consuming capacity, making the
// family eligible for availability alerts on the session.
func (r *RegistrationService) MarkInterested(ctx context.Context, principal models.Principal, childID, sessionID uuid.UUID) (*models.Registration, error) {
	child, err := r.store.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrNotFound
	}
	if !principal.Owns(child.FamilyID) {
		return nil, ErrNotOwner
	}

	existing, err := r.store.GetRegistrationForChild(ctx, childID, sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	now := time.Now()
	reg := &models.Registration{
		ID:        uuid.New(),
		FamilyID:  child.FamilyID,
		ChildID:   childID,
		SessionID: sessionID,
		Status:    models.RegistrationInterested,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = r.store.WithTx(ctx, func(tx pgx.Tx) error {
		return r.store.CreateRegistrationTx(ctx, tx, reg)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Cancel releases a registration. Freed capacity is never handed to the
// waitlist implicitly; an operator promotes explicitly via
// PromoteFromWaitlist.
func (r *RegistrationService) Cancel(ctx context.Context, principal models.Principal, registrationID uuid.UUID) error {
	reg, err := r.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrNotFound
	}
	if !principal.Owns(reg.FamilyID) {
		return ErrNotOwner
	}
	if reg.Status == models.RegistrationCancelled {
		return ErrInvalidTransition
	}

	return r.store.WithTx(ctx, func(tx pgx.Tx) error {
		sess, err := r.store.LockSession(ctx, tx, reg.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNotFound
		}

		enrolled, waitlisted := sess.EnrolledCount, sess.WaitlistCount
		switch reg.Status {
		case models.RegistrationRegistered:
			enrolled--
		case models.RegistrationWaitlisted:
			waitlisted--
		}
		if enrolled < 0 {
			enrolled = 0
		}
		if waitlisted < 0 {
			waitlisted = 0
		}

		reg.Status = models.RegistrationCancelled
		reg.WaitlistPosition = nil
		if err := r.store.UpdateRegistrationTx(ctx, tx, reg); err != nil {
			return err
		}

		status := models.CapacityStatus(sess.Status, enrolled, sess.Capacity)
		return r.store.SetSessionEnrollmentTx(ctx, tx, sess.ID, enrolled, waitlisted, status)
	})
}

// PromoteFromWaitlist moves the head of a session's waitlist into an open
// spot. Admin only.
func (r *RegistrationService) PromoteFromWaitlist(ctx context.Context, principal models.Principal, sessionID uuid.UUID) (*models.Registration, error) {
	if !principal.Admin {
		return nil, ErrNotOwner
	}

	var promoted *models.Registration
	err := r.store.WithTx(ctx, func(tx pgx.Tx) error {
		sess, err := r.store.LockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNotFound
		}
		if sess.IsFull() {
			return ErrSessionFull
		}

		head, err := r.store.FirstWaitlistedTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if head == nil {
			return ErrNotFound
		}

		head.Status = models.RegistrationRegistered
		head.WaitlistPosition = nil
		if err := r.store.UpdateRegistrationTx(ctx, tx, head); err != nil {
			return err
		}
		promoted = head

		enrolled := sess.EnrolledCount + 1
		waitlisted := sess.WaitlistCount - 1
		if waitlisted < 0 {
			waitlisted = 0
		}
		status := models.CapacityStatus(sess.Status, enrolled, sess.Capacity)
		return r.store.SetSessionEnrollmentTx(ctx, tx, sess.ID, enrolled, waitlisted, status)
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// IsPremium checks the family's premium entitlement against the billing
// provider, falling back to the free tier when the check cannot complete.
func (r *RegistrationService) IsPremium(ctx context.Context, family *models.Family) bool {
	if r.billing == nil || family.BillingCustomerID == "" {
		return false
	}
	return r.billing.IsPremium(ctx, family.BillingCustomerID)
}
