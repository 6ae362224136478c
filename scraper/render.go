package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"campscout/config"
	"campscout/models"
)

// RenderExtractor fetches pages through the external render service, which
// executes JavaScript and returns the settled HTML. Parsing then reuses the
// declarative selector machinery.
type RenderExtractor struct {
	selectors *models.SelectorConfig
	client    *resty.Client
}

func NewRenderExtractor(selectors *models.SelectorConfig, cfg config.RenderConfig) *RenderExtractor {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(60 * time.Second).
		SetRetryCount(1)
	return &RenderExtractor{selectors: selectors, client: client}
}

func (e *RenderExtractor) Type() models.ExtractionType {
	return models.ExtractionRender
}

type renderRequest struct {
	URL     string `json:"url"`
	WaitFor string `json:"wait_for,omitempty"`
}

type renderResponse struct {
	HTML  string `json:"html"`
	Error string `json:"error,omitempty"`
}

func (e *RenderExtractor) Extract(ctx context.Context, source *models.ScrapeSource) ([]models.RawSession, error) {
	maxPages := e.selectors.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var sessions []models.RawSession
	pageURL := source.URL
	for page := 1; page <= maxPages && pageURL != ""; page++ {
		doc, err := e.renderDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", page, pageURL, err)
		}

		sessions = append(sessions, ExtractFromDocument(doc, e.selectors, pageURL)...)
		pageURL = nextPageURL(doc, e.selectors.NextPage, pageURL)
	}
	return sessions, nil
}

func (e *RenderExtractor) renderDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var result renderResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(renderRequest{URL: pageURL, WaitFor: e.selectors.ListSelector}).
		SetResult(&result).
		Post("/v1/render")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("render service status %d", resp.StatusCode())
	}
	if result.Error != "" {
		return nil, fmt.Errorf("render service: %s", result.Error)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
}
