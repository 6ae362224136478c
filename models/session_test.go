package models

import "testing"

func TestCanTransitionSession(t *testing.T) {
	allowed := []struct{ from, to SessionStatus }{
		{SessionStatusDraft, SessionStatusActive},
		{SessionStatusActive, SessionStatusSoldOut},
		{SessionStatusSoldOut, SessionStatusActive},
		{SessionStatusActive, SessionStatusCancelled},
		{SessionStatusSoldOut, SessionStatusCompleted},
		{SessionStatusDraft, SessionStatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransitionSession(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to SessionStatus }{
		{SessionStatusCancelled, SessionStatusActive},
		{SessionStatusCompleted, SessionStatusActive},
		{SessionStatusCompleted, SessionStatusCancelled},
		{SessionStatusSoldOut, SessionStatusDraft},
		{SessionStatusActive, SessionStatusActive},
	}
	for _, tc := range denied {
		if CanTransitionSession(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s denied", tc.from, tc.to)
		}
	}
}

func TestCapacityStatus(t *testing.T) {
	if got := CapacityStatus(SessionStatusActive, 20, 20); got != SessionStatusSoldOut {
		t.Fatalf("full active session should be sold_out, got %s", got)
	}
	if got := CapacityStatus(SessionStatusSoldOut, 19, 20); got != SessionStatusActive {
		t.Fatalf("sold_out with freed spot should be active, got %s", got)
	}
	// Only active and sold_out participate in capacity flips.
	if got := CapacityStatus(SessionStatusCancelled, 20, 20); got != SessionStatusCancelled {
		t.Fatalf("cancelled must stay cancelled, got %s", got)
	}
	if got := CapacityStatus(SessionStatusDraft, 20, 20); got != SessionStatusDraft {
		t.Fatalf("draft must stay draft, got %s", got)
	}
	// Unknown capacity never flips to sold_out.
	if got := CapacityStatus(SessionStatusActive, 50, 0); got != SessionStatusActive {
		t.Fatalf("zero capacity should stay active, got %s", got)
	}
}

func TestSpotsRemaining(t *testing.T) {
	s := Session{Capacity: 20, EnrolledCount: 18}
	if s.SpotsRemaining() != 2 {
		t.Fatalf("expected 2, got %d", s.SpotsRemaining())
	}

	over := Session{Capacity: 20, EnrolledCount: 25}
	if over.SpotsRemaining() != 0 {
		t.Fatalf("expected 0 for overenrolled, got %d", over.SpotsRemaining())
	}
}

func TestCanTransitionJob(t *testing.T) {
	if !CanTransitionJob(JobStatusPending, JobStatusRunning) {
		t.Fatal("pending -> running should be allowed")
	}
	if !CanTransitionJob(JobStatusRunning, JobStatusFailed) {
		t.Fatal("running -> failed should be allowed")
	}
	if CanTransitionJob(JobStatusPending, JobStatusCompleted) {
		t.Fatal("pending -> completed should be denied")
	}
	if CanTransitionJob(JobStatusCompleted, JobStatusRunning) {
		t.Fatal("completed is terminal")
	}
}
