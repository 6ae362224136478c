package models

import "testing"

func TestCanTransitionDevRequest(t *testing.T) {
	allowed := []struct{ from, to DevRequestStatus }{
		{DevRequestPending, DevRequestInProgress},
		{DevRequestInProgress, DevRequestTesting},
		{DevRequestTesting, DevRequestNeedsFeedback},
		{DevRequestTesting, DevRequestCompleted},
		{DevRequestNeedsFeedback, DevRequestInProgress},
		{DevRequestPending, DevRequestFailed},
	}
	for _, tc := range allowed {
		if !CanTransitionDevRequest(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to DevRequestStatus }{
		{DevRequestPending, DevRequestCompleted},
		{DevRequestCompleted, DevRequestInProgress},
		{DevRequestFailed, DevRequestPending},
		{DevRequestNeedsFeedback, DevRequestCompleted},
	}
	for _, tc := range denied {
		if CanTransitionDevRequest(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s denied", tc.from, tc.to)
		}
	}
}

func TestDevRequestIsOpen(t *testing.T) {
	open := []DevRequestStatus{DevRequestPending, DevRequestInProgress, DevRequestTesting, DevRequestNeedsFeedback}
	for _, s := range open {
		if !s.IsOpen() {
			t.Fatalf("expected %s open", s)
		}
	}
	if DevRequestCompleted.IsOpen() || DevRequestFailed.IsOpen() {
		t.Fatal("completed and failed must not be open")
	}
}
