package services

import (
	"testing"
	"time"

	"campscout/models"
)

func fullCandidate() *models.CandidateSession {
	return &models.CandidateSession{
		Name:            "Robotics Camp",
		Description:     "Build and program robots",
		StartDate:       time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		DropOff:         "09:00",
		PickUp:          "15:30",
		PriceCents:      42500,
		AgeMin:          8,
		AgeMax:          12,
		LocationName:    "Lincoln Community Center",
		RegistrationURL: "https://example.com/register/robotics",
	}
}

func TestScoreCompleteness_AllFields(t *testing.T) {
	score, missing := ScoreCompleteness(fullCandidate())
	if score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", missing)
	}
}

func TestScoreCompleteness_MissingPrice(t *testing.T) {
	c := fullCandidate()
	c.PriceCents = 0

	score, missing := ScoreCompleteness(c)
	if score != 85 {
		t.Fatalf("expected 85, got %d", score)
	}
	if len(missing) != 1 || missing[0] != "price" {
		t.Fatalf("expected missing [price], got %v", missing)
	}
}

func TestScoreCompleteness_MissingDatesScoresBelowMissingPrice(t *testing.T) {
	noPrice := fullCandidate()
	noPrice.PriceCents = 0
	priceScore, _ := ScoreCompleteness(noPrice)

	noDates := fullCandidate()
	noDates.PriceCents = 0
	noDates.StartDate = time.Time{}
	noDates.EndDate = time.Time{}
	dateScore, missing := ScoreCompleteness(noDates)

	if dateScore >= priceScore {
		t.Fatalf("missing dates (%d) should score below missing price only (%d)", dateScore, priceScore)
	}
	if missing[0] != "dates" {
		t.Fatalf("expected dates first in missing, got %v", missing)
	}
}

func TestScoreCompleteness_InvertedDatesCountMissing(t *testing.T) {
	c := fullCandidate()
	c.StartDate, c.EndDate = c.EndDate, c.StartDate

	score, missing := ScoreCompleteness(c)
	if score != 80 {
		t.Fatalf("expected 80, got %d", score)
	}
	if len(missing) != 1 || missing[0] != "dates" {
		t.Fatalf("expected missing [dates], got %v", missing)
	}
}

func TestScoreCompleteness_Empty(t *testing.T) {
	score, missing := ScoreCompleteness(&models.CandidateSession{})
	if score != 0 {
		t.Fatalf("expected 0, got %d", score)
	}
	if len(missing) != 8 {
		t.Fatalf("expected all 8 fields missing, got %v", missing)
	}
}

func TestQualityFromScores_Tiers(t *testing.T) {
	cases := []struct {
		scores   []int
		wantTier models.QualityTier
		wantAuto bool
	}{
		{[]int{90, 85, 95}, models.QualityHigh, true},
		{[]int{80, 80}, models.QualityHigh, true},
		{[]int{79, 79}, models.QualityMedium, false},
		{[]int{50, 60}, models.QualityMedium, false},
		{[]int{40, 30}, models.QualityLow, false},
		{nil, models.QualityLow, false},
	}

	for _, tc := range cases {
		_, tier, auto := QualityFromScores(tc.scores, 80)
		if tier != tc.wantTier {
			t.Fatalf("scores %v: expected tier %s, got %s", tc.scores, tc.wantTier, tier)
		}
		if auto != tc.wantAuto {
			t.Fatalf("scores %v: expected auto %v, got %v", tc.scores, tc.wantAuto, auto)
		}
	}
}

func TestQualityFromScores_Average(t *testing.T) {
	avg, _, _ := QualityFromScores([]int{60, 80}, 80)
	if avg != 70 {
		t.Fatalf("expected avg 70, got %f", avg)
	}
}
