package services

import (
	"campscout/models"
)

// Field weights for the completeness score. The sum is exactly 100; the
// score is the sum of weights for fields that are present and well-formed.
// Downstream notification and admin behavior key off these values, so
// changing them changes what auto-imports.
const (
	weightName     = 20
	weightDates    = 20
	weightPrice    = 15
	weightLocation = 15
	weightRegURL   = 10
	weightAges     = 10
	weightTimes    = 5
	weightDesc     = 5
)

// ScoreCompleteness computes the 0-100 completeness of a parsed candidate
// and the list of missing fields, in a stable order.
func ScoreCompleteness(c *models.CandidateSession) (int, []string) {
	score := 0
	var missing []string

	if c.Name != "" {
		score += weightName
	} else {
		missing = append(missing, "name")
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && !c.EndDate.Before(c.StartDate) {
		score += weightDates
	} else {
		missing = append(missing, "dates")
	}
	if c.PriceCents > 0 {
		score += weightPrice
	} else {
		missing = append(missing, "price")
	}
	if c.LocationName != "" {
		score += weightLocation
	} else {
		missing = append(missing, "location")
	}
	if c.RegistrationURL != "" {
		score += weightRegURL
	} else {
		missing = append(missing, "registration_url")
	}
	if c.AgeMin > 0 || c.AgeMax > 0 {
		score += weightAges
	} else {
		missing = append(missing, "ages")
	}
	if c.DropOff != "" && c.PickUp != "" {
		score += weightTimes
	} else {
		missing = append(missing, "times")
	}
	if c.Description != "" {
		score += weightDesc
	} else {
		missing = append(missing, "description")
	}

	return score, missing
}

// QualityFromScores derives a source's quality score and tier from the
// completeness of its recent sessions, and whether the source clears the
// auto-activation bar. Pure so the one fuzzy decision in the pipeline stays
// testable in isolation.
func QualityFromScores(scores []int, activateAt float64) (avg float64, tier models.QualityTier, autoActivate bool) {
	if len(scores) == 0 {
		return 0, models.QualityLow, false
	}

	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg = float64(sum) / float64(len(scores))

	switch {
	case avg >= 80:
		tier = models.QualityHigh
	case avg >= 50:
		tier = models.QualityMedium
	default:
		tier = models.QualityLow
	}

	return avg, tier, avg >= activateAt
}
