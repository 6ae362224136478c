package discovery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"campscout/config"
	"campscout/models"
	"campscout/storage"
)

// searchQueries are run per city against the search provider.
var searchQueries = []string{
	"summer camps %s",
	"kids day camps %s",
	"youth summer programs %s",
}

// SearchClient queries the external web search provider for camp sites in
// a city.
type SearchClient struct {
	store  *storage.PostgresStore
	client *resty.Client
}

func NewSearchClient(store *storage.PostgresStore, cfg config.SearchConfig) *SearchClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(20 * time.Second).
		SetRetryCount(2)
	return &SearchClient{store: store, client: client}
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// SearchCity runs the standard camp queries for a city and records scored
// candidates.
func (s *SearchClient) SearchCity(ctx context.Context, city *models.City) (int, error) {
	created := 0
	for _, tmpl := range searchQueries {
		query := fmt.Sprintf(tmpl, city.Name)

		var result searchResponse
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParam("q", query).
			SetResult(&result).
			Get("/v1/search")
		if err != nil {
			log.Printf("Warning: search %q failed: %v", query, err)
			continue
		}
		if resp.IsError() {
			log.Printf("Warning: search %q returned %d", query, resp.StatusCode())
			continue
		}

		for _, r := range result.Results {
			host := hostOf(r.URL)
			if host == "" || excludedHosts[host] {
				continue
			}
			score := ScorePage(r.URL, r.Title, r.Snippet)
			if score < minCandidateScore {
				continue
			}

			candidate := &models.CandidateSite{
				URL:       "https://" + host,
				Host:      host,
				Title:     r.Title,
				CityID:    city.ID,
				Score:     score,
				FoundVia:  "search",
				SeedURL:   query,
				Status:    models.CandidateStatusNew,
				CreatedAt: time.Now(),
			}
			err := s.store.CreateCandidateSite(ctx, candidate)
			if err == storage.ErrDuplicate {
				continue
			}
			if err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
