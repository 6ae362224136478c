package discovery

import (
	"context"
	"log"
	"strings"
	"time"

	colly "github.com/gocolly/colly/v2"

	"campscout/config"
	"campscout/models"
	"campscout/storage"
)

// minCandidateScore is the page score below which a crawled site is not
// worth recording.
const minCandidateScore = 3.0

// Crawler walks outward from a city's seed pages (directories, park
// district sites, existing sources) and records external sites that look
// like camp providers.
type Crawler struct {
	store *storage.PostgresStore
	cfg   config.DiscoveryConfig
}

func NewCrawler(store *storage.PostgresStore, cfg config.DiscoveryConfig) *Crawler {
	return &Crawler{store: store, cfg: cfg}
}

// CrawlCity explores seed URLs for one city and persists scored candidates.
// Returns the number of new candidate sites recorded.
func (c *Crawler) CrawlCity(ctx context.Context, city *models.City, seedURLs []string) (int, error) {
	collector := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.MaxDepth(c.cfg.MaxDepth),
		colly.Async(true),
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
	)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		RandomDelay: time.Duration(c.cfg.RateLimitMS) * time.Millisecond,
	}); err != nil {
		return 0, err
	}

	seedHosts := make(map[string]bool, len(seedURLs))
	for _, seed := range seedURLs {
		seedHosts[hostOf(seed)] = true
	}

	created := 0
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		pageURL := e.Request.URL.String()
		host := hostOf(pageURL)
		if host == "" || seedHosts[host] {
			return
		}

		title := e.ChildText("title")
		score := ScorePage(pageURL, title, e.Text)
		if score < minCandidateScore {
			return
		}

		candidate := &models.CandidateSite{
			URL:       "https://" + host,
			Host:      host,
			Title:     strings.TrimSpace(title),
			CityID:    city.ID,
			Score:     score,
			FoundVia:  "crawl",
			SeedURL:   seedURLOf(e),
			Status:    models.CandidateStatusNew,
			CreatedAt: time.Now(),
		}
		err := c.store.CreateCandidateSite(ctx, candidate)
		if err == storage.ErrDuplicate {
			return
		}
		if err != nil {
			log.Printf("Warning: failed to record candidate %s: %v", host, err)
			return
		}
		created++
		log.Printf("Discovery: candidate %s (score %.1f) for %s", host, score, city.Slug)
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || excludedHosts[hostOf(link)] {
			return
		}
		// Only leave a seed domain one hop: follow external links but not
		// external-to-external ones.
		if !seedHosts[hostOf(e.Request.URL.String())] {
			return
		}
		if err := e.Request.Visit(link); err != nil {
			return
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		log.Printf("Warning: discovery fetch %s: %v", r.Request.URL, err)
	})

	for _, seed := range seedURLs {
		if err := collector.Visit(seed); err != nil {
			log.Printf("Warning: discovery seed %s: %v", seed, err)
		}
	}
	collector.Wait()
	return created, nil
}

func seedURLOf(e *colly.HTMLElement) string {
	if ref := e.Request.Headers.Get("Referer"); ref != "" {
		return ref
	}
	return e.Request.URL.String()
}
