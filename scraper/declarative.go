package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campscout/models"
)

const defaultMaxPages = 10

// DeclarativeExtractor runs a selector config against a source's pages:
// one list selector, per-field selectors relative to each item, and an
// optional next-page link.
type DeclarativeExtractor struct {
	selectors *models.SelectorConfig
	client    *http.Client
}

func NewDeclarativeExtractor(selectors *models.SelectorConfig, client *http.Client) *DeclarativeExtractor {
	return &DeclarativeExtractor{selectors: selectors, client: client}
}

func (e *DeclarativeExtractor) Type() models.ExtractionType {
	return models.ExtractionDeclarative
}

func (e *DeclarativeExtractor) Extract(ctx context.Context, source *models.ScrapeSource) ([]models.RawSession, error) {
	maxPages := e.selectors.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var sessions []models.RawSession
	pageURL := source.URL
	for page := 1; page <= maxPages && pageURL != ""; page++ {
		doc, err := e.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", page, pageURL, err)
		}

		pageSessions := ExtractFromDocument(doc, e.selectors, pageURL)
		sessions = append(sessions, pageSessions...)

		pageURL = nextPageURL(doc, e.selectors.NextPage, pageURL)
	}
	return sessions, nil
}

func (e *DeclarativeExtractor) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// ExtractFromDocument applies a selector config to a parsed document.
// Shared with the render extractor, which obtains its HTML differently.
func ExtractFromDocument(doc *goquery.Document, selectors *models.SelectorConfig, baseURL string) []models.RawSession {
	var sessions []models.RawSession
	doc.Find(selectors.ListSelector).Each(func(_ int, item *goquery.Selection) {
		fields := make(map[string]string, len(selectors.Fields))
		for field, sel := range selectors.Fields {
			node := item.Find(sel).First()
			if attr, ok := selectors.Attrs[field]; ok {
				val, _ := node.Attr(attr)
				fields[field] = resolveURL(baseURL, strings.TrimSpace(val), field)
			} else {
				fields[field] = strings.TrimSpace(node.Text())
			}
		}
		if raw := rawFromFields(fields); raw != nil {
			sessions = append(sessions, *raw)
		}
	})
	return sessions
}

// rawFromFields maps the extracted field map onto a RawSession, returning
// nil for items with no name at all (layout noise in the list selector).
func rawFromFields(fields map[string]string) *models.RawSession {
	raw := &models.RawSession{}
	for field, val := range fields {
		switch field {
		case "name":
			raw.Name = val
		case "description":
			raw.Description = val
		case "start_date":
			raw.StartDate = val
		case "end_date":
			raw.EndDate = val
		case "dates":
			raw.StartDate, raw.EndDate = splitDateRange(val)
		case "drop_off":
			raw.DropOff = val
		case "pick_up":
			raw.PickUp = val
		case "price":
			raw.Price = val
		case "ages":
			raw.Ages = val
		case "location_name":
			raw.LocationName = val
		case "registration_url":
			raw.RegistrationURL = val
		case "image_url":
			raw.ImageURL = val
		case "capacity":
			raw.Capacity = val
		case "spots_left":
			raw.SpotsLeft = val
		}
	}
	if raw.Name == "" {
		return nil
	}
	raw.Data, _ = json.Marshal(fields)
	return raw
}

// splitDateRange breaks a combined "June 9 - June 13" field into start and
// end. A bare hyphen only splits textual dates, so ISO dates pass through
// whole. A single date fills both ends.
func splitDateRange(s string) (string, string) {
	seps := []string{" - ", " to ", " – "}
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		seps = append(seps, "-")
	}
	for _, sep := range seps {
		if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}
	s = strings.TrimSpace(s)
	return s, s
}

func nextPageURL(doc *goquery.Document, nextSelector, currentURL string) string {
	if nextSelector == "" {
		return ""
	}
	href, ok := doc.Find(nextSelector).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	return resolveURL(currentURL, href, "registration_url")
}

// resolveURL absolutizes href-like fields against the page URL. Non-URL
// fields pass through untouched.
func resolveURL(baseURL, val, field string) string {
	if field != "registration_url" && field != "image_url" || val == "" {
		return val
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return val
	}
	ref, err := url.Parse(val)
	if err != nil {
		return val
	}
	return base.ResolveReference(ref).String()
}
