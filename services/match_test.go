package services

import (
	"testing"
	"time"

	"campscout/models"
)

var (
	weekStart = time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	weekEnd   = time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
)

func sessionNamed(name string, start, end time.Time) models.Session {
	return models.Session{Name: name, StartDate: start, EndDate: end}
}

func TestBestFuzzyMatch_RenamedOffering(t *testing.T) {
	existing := []models.Session{
		sessionNamed("Summer Robotics Camp Week 1", weekStart, weekEnd),
	}
	candidate := &models.CandidateSession{
		Name:      "Robotics Camp - Week 1",
		StartDate: weekStart,
		EndDate:   weekEnd,
	}

	match := BestFuzzyMatch(existing, candidate)
	if match == nil {
		t.Fatal("expected a match for cosmetic rename")
	}
	if match.Name != existing[0].Name {
		t.Fatalf("matched wrong session: %s", match.Name)
	}
}

func TestBestFuzzyMatch_DifferentDatesNeverMatch(t *testing.T) {
	existing := []models.Session{
		sessionNamed("Robotics Camp", weekStart.AddDate(0, 0, 7), weekEnd.AddDate(0, 0, 7)),
	}
	candidate := &models.CandidateSession{
		Name:      "Robotics Camp",
		StartDate: weekStart,
		EndDate:   weekEnd,
	}

	if match := BestFuzzyMatch(existing, candidate); match != nil {
		t.Fatalf("expected no match across date ranges, got %s", match.Name)
	}
}

func TestBestFuzzyMatch_DissimilarNames(t *testing.T) {
	existing := []models.Session{
		sessionNamed("Pottery Studio", weekStart, weekEnd),
	}
	candidate := &models.CandidateSession{
		Name:      "Wilderness Survival",
		StartDate: weekStart,
		EndDate:   weekEnd,
	}

	if match := BestFuzzyMatch(existing, candidate); match != nil {
		t.Fatalf("expected no match for dissimilar names, got %s", match.Name)
	}
}

func TestBestFuzzyMatch_PicksHighestSimilarity(t *testing.T) {
	existing := []models.Session{
		sessionNamed("Junior Soccer Stars", weekStart, weekEnd),
		sessionNamed("Soccer Stars Advanced", weekStart, weekEnd),
	}
	candidate := &models.CandidateSession{
		Name:      "Soccer Stars Advanced Camp",
		StartDate: weekStart,
		EndDate:   weekEnd,
	}

	match := BestFuzzyMatch(existing, candidate)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Name != "Soccer Stars Advanced" {
		t.Fatalf("expected closest name to win, got %s", match.Name)
	}
}
