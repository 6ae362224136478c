package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Summer Art Camp Week 3", "art 3"},
		{"Art Camp - Week 3", "art 3"},
		{"ROBOTICS!!!", "robotics"},
		{"  Junior   Soccer  ", "soccer"},
		{"Summer Camp", "summer camp"}, // all filler falls back to the collapsed original
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSessionKey_StableAcrossRenames(t *testing.T) {
	sourceID := uuid.MustParse("6a6e2b6e-0000-4000-8000-000000000001")
	start := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	a := SessionKey(sourceID, "Summer Art Camp Week 3", start, end)
	b := SessionKey(sourceID, "Art Camp - Week 3", start, end)
	if a != b {
		t.Fatalf("cosmetic rename changed key: %s vs %s", a, b)
	}
}

func TestSessionKey_DifferentiatesDatesAndSources(t *testing.T) {
	sourceA := uuid.MustParse("6a6e2b6e-0000-4000-8000-000000000001")
	sourceB := uuid.MustParse("6a6e2b6e-0000-4000-8000-000000000002")
	start := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	base := SessionKey(sourceA, "Art Camp", start, end)
	if SessionKey(sourceB, "Art Camp", start, end) == base {
		t.Fatal("different sources must produce different keys")
	}
	if SessionKey(sourceA, "Art Camp", start.AddDate(0, 0, 7), end.AddDate(0, 0, 7)) == base {
		t.Fatal("different dates must produce different keys")
	}
}

func TestSessionKey_Length(t *testing.T) {
	key := SessionKey(uuid.New(), "Art Camp", time.Now(), time.Now())
	if len(key) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(key))
	}
}
