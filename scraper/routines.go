package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campscout/models"
)

// RoutineFunc is a hand-written extraction routine for sites that defeat
// declarative selectors. Routines are registered by name and referenced
// from a source's extraction method.
type RoutineFunc func(ctx context.Context, client *http.Client, source *models.ScrapeSource) ([]models.RawSession, error)

var routines = map[string]RoutineFunc{
	"jsonld_events": extractJSONLDEvents,
}

// RegisterRoutine installs a named routine. Call from init in the file
// that defines the routine.
func RegisterRoutine(name string, fn RoutineFunc) {
	routines[name] = fn
}

type RoutineExtractor struct {
	name   string
	fn     RoutineFunc
	client *http.Client
}

func NewRoutineExtractor(name string, client *http.Client) (*RoutineExtractor, error) {
	fn, ok := routines[name]
	if !ok {
		return nil, fmt.Errorf("unknown routine %q", name)
	}
	return &RoutineExtractor{name: name, fn: fn, client: client}, nil
}

func (e *RoutineExtractor) Type() models.ExtractionType {
	return models.ExtractionRoutine
}

func (e *RoutineExtractor) Extract(ctx context.Context, source *models.ScrapeSource) ([]models.RawSession, error) {
	return e.fn(ctx, e.client, source)
}

// extractJSONLDEvents reads schema.org Event objects embedded as JSON-LD,
// which many registration platforms emit for SEO.
func extractJSONLDEvents(ctx context.Context, client *http.Client, source *models.ScrapeSource) ([]models.RawSession, error) {
	urls := append([]string{source.URL}, source.SecondaryURLs...)

	var sessions []models.RawSession
	for _, pageURL := range urls {
		doc, err := fetchPage(ctx, client, pageURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pageURL, err)
		}

		doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
			sessions = append(sessions, eventsFromJSONLD(s.Text())...)
		})
	}
	return sessions, nil
}

type jsonLDEvent struct {
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	URL         string          `json:"url"`
	Image       string          `json:"image"`
	Location    json.RawMessage `json:"location"`
	Offers      *struct {
		Price string `json:"price"`
	} `json:"offers"`
}

func eventsFromJSONLD(blob string) []models.RawSession {
	// A JSON-LD block holds either one object or an array of them.
	var events []jsonLDEvent
	trimmed := strings.TrimSpace(blob)
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &events); err != nil {
			return nil
		}
	} else {
		var single jsonLDEvent
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil
		}
		events = append(events, single)
	}

	var sessions []models.RawSession
	for _, ev := range events {
		if ev.Type != "Event" || ev.Name == "" {
			continue
		}
		raw := models.RawSession{
			Name:            ev.Name,
			Description:     ev.Description,
			StartDate:       isoDateOnly(ev.StartDate),
			EndDate:         isoDateOnly(ev.EndDate),
			RegistrationURL: ev.URL,
			ImageURL:        ev.Image,
			LocationName:    locationName(ev.Location),
		}
		if ev.Offers != nil {
			raw.Price = ev.Offers.Price
		}
		raw.Data, _ = json.Marshal(ev)
		sessions = append(sessions, raw)
	}
	return sessions
}

// isoDateOnly strips the time part from an ISO 8601 datetime.
func isoDateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

// locationName handles schema.org location being a string or a Place object.
func locationName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	var place struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &place) == nil {
		return place.Name
	}
	return ""
}

func fetchPage(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := client.Do(req)
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
