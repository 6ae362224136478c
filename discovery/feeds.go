package discovery

import (
	"context"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"campscout/models"
	"campscout/storage"
)

// FeedScanner pulls local event and parenting-blog feeds and records linked
// sites that score as camp providers.
type FeedScanner struct {
	store  *storage.PostgresStore
	parser *gofeed.Parser
}

func NewFeedScanner(store *storage.PostgresStore) *FeedScanner {
	return &FeedScanner{store: store, parser: gofeed.NewParser()}
}

// ScanFeeds parses each feed URL and records candidates from item links.
func (f *FeedScanner) ScanFeeds(ctx context.Context, city *models.City, feedURLs []string) (int, error) {
	created := 0
	for _, feedURL := range feedURLs {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("Warning: failed to parse feed %s: %v", feedURL, err)
			continue
		}

		for _, item := range feed.Items {
			if item.Link == "" {
				continue
			}
			score := ScorePage(item.Link, item.Title, item.Description)
			if score < minCandidateScore {
				continue
			}

			host := hostOf(item.Link)
			if host == "" {
				continue
			}
			candidate := &models.CandidateSite{
				URL:       "https://" + host,
				Host:      host,
				Title:     item.Title,
				CityID:    city.ID,
				Score:     score,
				FoundVia:  "feed",
				SeedURL:   feedURL,
				Status:    models.CandidateStatusNew,
				CreatedAt: time.Now(),
			}
			err := f.store.CreateCandidateSite(ctx, candidate)
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
