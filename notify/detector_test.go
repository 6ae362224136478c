package notify

import (
	"testing"
	"time"

	"campscout/models"
)

func intPtr(n int) *int { return &n }

func TestNewlyLow(t *testing.T) {
	threshold := 5

	if !NewlyLow(intPtr(8), 3, threshold) {
		t.Fatal("drop from 8 to 3 should be newly low")
	}
	if NewlyLow(intPtr(3), 2, threshold) {
		t.Fatal("already-low session should not re-flag")
	}
	if NewlyLow(intPtr(8), 5, threshold) {
		t.Fatal("at threshold is not low")
	}
	if !NewlyLow(nil, 2, threshold) {
		t.Fatal("first observation below threshold should flag")
	}
	if NewlyLow(nil, 6, threshold) {
		t.Fatal("first observation above threshold should not flag")
	}
	if !NewlyLow(intPtr(5), 4, threshold) {
		t.Fatal("crossing from exactly threshold should flag")
	}
}

func TestAwaitingSend(t *testing.T) {
	now := time.Now()

	if !AwaitingSend(&models.NotificationRecord{}) {
		t.Fatal("record with no send outcome should be retried")
	}
	if AwaitingSend(&models.NotificationRecord{SentAt: &now}) {
		t.Fatal("sent record must not be retried")
	}
	if AwaitingSend(&models.NotificationRecord{SendError: "smtp timeout"}) {
		t.Fatal("failed send consumed the record, must not be retried")
	}
}
