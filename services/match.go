package services

import (
	"context"

	"github.com/antzucaro/matchr"
	"github.com/google/uuid"

	"campscout/identity"
	"campscout/models"
	"campscout/storage"
)

// fuzzyMatchThreshold is the minimum Jaro-Winkler similarity between
// normalized names for two sessions with identical dates to be treated as
// the same offering.
const fuzzyMatchThreshold = 0.90

// Matcher resolves scraped candidates against existing sessions for a
// source.
type Matcher struct {
	store *storage.PostgresStore
}

func NewMatcher(store *storage.PostgresStore) *Matcher {
	return &Matcher{store: store}
}

// Match finds the existing session a candidate corresponds to, or nil when
// the candidate is new. Lookup is by natural key first, then by fuzzy name
// similarity among the source's sessions sharing the same date range.
func (m *Matcher) Match(ctx context.Context, sourceID uuid.UUID, c *models.CandidateSession) (*models.Session, error) {
	key := identity.SessionKey(sourceID, c.Name, c.StartDate, c.EndDate)
	session, err := m.store.GetSessionByNaturalKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	// Renamed offerings keep their dates; fall back to name similarity
	// within the same date window.
	existing, err := m.store.GetSessionsForSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return BestFuzzyMatch(existing, c), nil
}

// BestFuzzyMatch returns the highest-similarity session sharing the
// candidate's exact date range, or nil when none clears the threshold.
func BestFuzzyMatch(existing []models.Session, c *models.CandidateSession) *models.Session {
	candName := identity.NormalizeName(c.Name)
	if candName == "" {
		return nil
	}

	var best *models.Session
	bestScore := fuzzyMatchThreshold
	for i := range existing {
		s := &existing[i]
		if !s.StartDate.Equal(c.StartDate) || !s.EndDate.Equal(c.EndDate) {
			continue
		}
		score := matchr.JaroWinkler(identity.NormalizeName(s.Name), candName, false)
		if score >= bestScore {
			best = s
			bestScore = score
		}
	}
	return best
}
