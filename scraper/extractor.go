package scraper

import (
	"context"
	"errors"
	"fmt"

	"campscout/config"
	"campscout/httputil"
	"campscout/models"
)

var ErrNoMethod = errors.New("source has no extraction method")

// Extractor turns a source's pages into raw session records. Extraction is
// pure fetch-and-parse; validation and import happen downstream.
type Extractor interface {
	Type() models.ExtractionType
	Extract(ctx context.Context, source *models.ScrapeSource) ([]models.RawSession, error)
}

// NewExtractor dispatches on the source's configured extraction method.
func NewExtractor(source *models.ScrapeSource, clients *httputil.Clients, renderCfg config.RenderConfig) (Extractor, error) {
	method := source.Method
	if method.IsZero() {
		return nil, ErrNoMethod
	}

	switch method.Type {
	case models.ExtractionRoutine:
		return NewRoutineExtractor(method.Routine, clients.Scraping)
	case models.ExtractionDeclarative:
		if method.Selectors == nil {
			return nil, fmt.Errorf("declarative method without selectors")
		}
		return NewDeclarativeExtractor(method.Selectors, clients.Scraping), nil
	case models.ExtractionAPI:
		if method.API == nil {
			return nil, fmt.Errorf("api method without endpoint spec")
		}
		return NewAPIExtractor(method.API, clients.API), nil
	case models.ExtractionRender:
		if method.Selectors == nil {
			return nil, fmt.Errorf("render method without selectors")
		}
		return NewRenderExtractor(method.Selectors, renderCfg), nil
	default:
		return nil, fmt.Errorf("unknown extraction type %q", method.Type)
	}
}
