package discovery

import (
	"net/url"
	"strings"
)

// Keyword weights for judging whether a page belongs to a camp provider.
// Title hits count double since titles are short and deliberate.
var campKeywords = map[string]float64{
	"summer camp":  3.0,
	"day camp":     3.0,
	"camps":        1.5,
	"camp":         1.0,
	"register":     1.0,
	"registration": 1.0,
	"enroll":       1.0,
	"ages":         0.5,
	"kids":         0.5,
	"children":     0.5,
	"youth":        0.5,
	"session":      0.5,
	"week":         0.25,
}

// Hosts that appear constantly in camp-adjacent pages but are never camp
// providers themselves.
var excludedHosts = map[string]bool{
	"facebook.com":    true,
	"instagram.com":   true,
	"twitter.com":     true,
	"x.com":           true,
	"youtube.com":     true,
	"linkedin.com":    true,
	"yelp.com":        true,
	"google.com":      true,
	"maps.google.com": true,
}

// ScorePage rates how likely a page belongs to a camp provider, from its
// title, visible text and URL. Pure function so it is testable without a
// crawl.
func ScorePage(pageURL, title, text string) float64 {
	host := hostOf(pageURL)
	if host == "" || excludedHosts[host] {
		return 0
	}

	score := 0.0
	lowerTitle := strings.ToLower(title)
	lowerText := strings.ToLower(text)
	for kw, weight := range campKeywords {
		if strings.Contains(lowerTitle, kw) {
			score += weight * 2
		}
		if strings.Contains(lowerText, kw) {
			score += weight
		}
	}

	lowerURL := strings.ToLower(pageURL)
	if strings.Contains(lowerURL, "camp") {
		score += 2
	}
	if strings.Contains(lowerURL, "register") || strings.Contains(lowerURL, "programs") {
		score += 1
	}
	return score
}

// hostOf returns the lowercased registrable-ish host, with www stripped.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
