package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"campscout/models"
)

const listingHTML = `
<html><body>
<div class="sessions">
  <div class="session-card">
    <h3 class="title">Robotics Camp Week 1</h3>
    <span class="dates">June 9 - June 13</span>
    <span class="price">$425</span>
    <span class="ages">Ages 8-12</span>
    <a class="register" href="/register/robotics-1">Register</a>
  </div>
  <div class="session-card">
    <h3 class="title">Pottery Camp</h3>
    <span class="dates">June 16 - June 20</span>
    <span class="price">$350</span>
    <span class="ages">Ages 6-10</span>
    <a class="register" href="https://other.example/pottery">Register</a>
  </div>
  <div class="session-card"></div>
</div>
<a class="next" href="/camps?page=2">Next</a>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func testSelectors() *models.SelectorConfig {
	return &models.SelectorConfig{
		ListSelector: "div.session-card",
		Fields: map[string]string{
			"name":             "h3.title",
			"dates":            "span.dates",
			"price":            "span.price",
			"ages":             "span.ages",
			"registration_url": "a.register",
		},
		Attrs:    map[string]string{"registration_url": "href"},
		NextPage: "a.next",
	}
}

func TestExtractFromDocument(t *testing.T) {
	doc := parseDoc(t, listingHTML)

	sessions := ExtractFromDocument(doc, testSelectors(), "https://camps.example/camps")
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions (empty card skipped), got %d", len(sessions))
	}

	first := sessions[0]
	if first.Name != "Robotics Camp Week 1" {
		t.Fatalf("unexpected name %q", first.Name)
	}
	if first.StartDate != "June 9" || first.EndDate != "June 13" {
		t.Fatalf("unexpected dates %q / %q", first.StartDate, first.EndDate)
	}
	if first.Price != "$425" {
		t.Fatalf("unexpected price %q", first.Price)
	}
	if first.RegistrationURL != "https://camps.example/register/robotics-1" {
		t.Fatalf("relative URL not absolutized: %q", first.RegistrationURL)
	}
	if len(first.Data) == 0 {
		t.Fatal("raw payload not captured")
	}

	if sessions[1].RegistrationURL != "https://other.example/pottery" {
		t.Fatalf("absolute URL mangled: %q", sessions[1].RegistrationURL)
	}
}

func TestNextPageURL(t *testing.T) {
	doc := parseDoc(t, listingHTML)

	next := nextPageURL(doc, "a.next", "https://camps.example/camps")
	if next != "https://camps.example/camps?page=2" {
		t.Fatalf("unexpected next page %q", next)
	}

	if got := nextPageURL(doc, "a.missing", "https://camps.example/camps"); got != "" {
		t.Fatalf("expected empty for missing selector, got %q", got)
	}
	if got := nextPageURL(doc, "", "https://camps.example/camps"); got != "" {
		t.Fatalf("expected empty when pagination disabled, got %q", got)
	}
}

func TestSplitDateRange(t *testing.T) {
	cases := []struct{ in, start, end string }{
		{"June 9 - June 13", "June 9", "June 13"},
		{"July 1 to July 5", "July 1", "July 5"},
		{"2026-07-06", "2026-07-06", "2026-07-06"},
	}
	for _, tc := range cases {
		start, end := splitDateRange(tc.in)
		if start != tc.start || end != tc.end {
			t.Fatalf("%q: expected %q/%q, got %q/%q", tc.in, tc.start, tc.end, start, end)
		}
	}
}
