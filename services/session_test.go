package services

import (
	"testing"
	"time"

	"campscout/models"
)

func TestScrapedStatus(t *testing.T) {
	zero := 0
	three := 3

	if got := scrapedStatus(&models.CandidateSession{SpotsLeft: &zero}); got != models.SessionStatusSoldOut {
		t.Fatalf("zero spots should be sold_out, got %s", got)
	}
	if got := scrapedStatus(&models.CandidateSession{SpotsLeft: &three}); got != models.SessionStatusActive {
		t.Fatalf("open spots should be active, got %s", got)
	}
	if got := scrapedStatus(&models.CandidateSession{}); got != models.SessionStatusActive {
		t.Fatalf("unknown availability should default to active, got %s", got)
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	if got := dateRange(start, end); got != "2026-07-06..2026-07-10" {
		t.Fatalf("unexpected range %q", got)
	}
}

func TestCampName(t *testing.T) {
	src := &models.ScrapeSource{Name: "Pine Ridge Camps"}
	c := &models.CandidateSession{Name: "Robotics Week 1"}
	if got := campName(src, c); got != "Pine Ridge Camps" {
		t.Fatalf("source name should win, got %q", got)
	}
	if got := campName(&models.ScrapeSource{}, c); got != "Robotics Week 1" {
		t.Fatalf("candidate name should back-fill, got %q", got)
	}
}

func TestRemovalStands(t *testing.T) {
	removedAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	// Session never observed since the removal was recorded: the change is
	// still current and must not be re-recorded on later jobs.
	before := removedAt.Add(-24 * time.Hour)
	if !removalStands(&before, removedAt) {
		t.Fatal("removal should stand when session was last seen before it")
	}
	if !removalStands(nil, removedAt) {
		t.Fatal("removal should stand when session has no last-seen time")
	}

	// Session reappeared in a later scrape: a fresh disappearance is news.
	after := removedAt.Add(24 * time.Hour)
	if removalStands(&after, removedAt) {
		t.Fatal("removal superseded by a later sighting should not stand")
	}
}
