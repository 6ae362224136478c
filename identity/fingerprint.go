package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// fillerWords are stripped from camp names before hashing so that cosmetic
// renames ("Summer Art Camp Week 3" vs "Art Camp - Week 3") keep the same key.
var fillerWords = map[string]bool{
	"summer":    true,
	"camp":      true,
	"camps":     true,
	"week":      true,
	"session":   true,
	"the":       true,
	"a":         true,
	"of":        true,
	"and":       true,
	"for":       true,
	"kids":      true,
	"youth":     true,
	"junior":    true,
	"day":       true,
	"half":      true,
	"full":      true,
	"am":        true,
	"pm":        true,
	"morning":   true,
	"afternoon": true,
}

var nonAlnumRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// SessionKey computes the natural key for a scraped session: source identity
// plus normalized name plus the exact date range. Two scrapes of the same
// offering hash identically; a date shift produces a different key and is
// reconciled by fuzzy matching instead.
func SessionKey(sourceID uuid.UUID, name string, start, end time.Time) string {
	input := fmt.Sprintf("%s|%s|%s|%s",
		sourceID,
		NormalizeName(name),
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// NormalizeName lowercases, strips punctuation and filler words, and
// collapses whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonAlnumRegex.ReplaceAllString(name, " ")

	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !fillerWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		// Name was nothing but filler; keep the collapsed original.
		return strings.Join(words, " ")
	}
	return strings.Join(kept, " ")
}
