package services

import (
	"errors"
	"testing"
	"time"

	"campscout/config"
	"campscout/models"
)

func TestApplyOutcomeFailureStreak(t *testing.T) {
	now := time.Now()
	var health models.ScraperHealth

	for i := 1; i <= 4; i++ {
		health = ApplyOutcome(health, false, errors.New("timeout"), now)
		if health.ConsecutiveFailures != i {
			t.Fatalf("after %d failures ConsecutiveFailures = %d", i, health.ConsecutiveFailures)
		}
	}
	if health.TotalRuns != 4 || health.SuccessfulRuns != 0 {
		t.Fatalf("counters off: total=%d successful=%d", health.TotalRuns, health.SuccessfulRuns)
	}
	if health.LastError != "timeout" {
		t.Fatalf("LastError = %q", health.LastError)
	}

	health = ApplyOutcome(health, true, nil, now)
	if health.ConsecutiveFailures != 0 {
		t.Fatalf("success must reset streak to 0, got %d", health.ConsecutiveFailures)
	}
	if health.LastError != "" {
		t.Fatalf("success must clear LastError, got %q", health.LastError)
	}
	if health.SuccessRate != 0.2 {
		t.Fatalf("SuccessRate = %v, want 0.2", health.SuccessRate)
	}
}

func TestEscalationFiresOnlyAtCrossings(t *testing.T) {
	cfg := config.PipelineConfig{
		DegradedFailures:   3,
		RegenerateFailures: 5,
		DisableFailures:    10,
	}

	cases := []struct {
		failures int
		want     EscalationAction
	}{
		{1, EscalateNone},
		{2, EscalateNone},
		{3, EscalateDegraded},
		{4, EscalateNone},
		{5, EscalateRegenerate},
		{6, EscalateNone},
		{9, EscalateNone},
		{10, EscalateDisable},
		{11, EscalateNone},
	}
	for _, tc := range cases {
		if got := EscalationFor(tc.failures, cfg); got != tc.want {
			t.Fatalf("EscalationFor(%d) = %v, want %v", tc.failures, got, tc.want)
		}
	}
}
