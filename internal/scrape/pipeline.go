package scrape

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/sells-group/scrape-service/internal/extract"
	"github.com/sells-group/scrape-service/internal/model"
)

// Enricher produces optional model-derived analysis of an extraction.
type Enricher interface {
	Enrich(ctx context.Context, ext *model.Extraction) (*model.Enrichment, error)
}

// Pipeline runs a guarded scrape end to end: host guard, robots gate, bounded
// fetch, structured extraction, optional AI analysis. A Pipeline is safe for
// concurrent use.
type Pipeline struct {
	fetcher  *Fetcher
	enricher Enricher
}

// NewPipeline creates a Pipeline. A nil enricher disables the analysis stage.
func NewPipeline(fetcher *Fetcher, enricher Enricher) *Pipeline {
	return &Pipeline{fetcher: fetcher, enricher: enricher}
}

// Run scrapes a single URL. An unreachable robots.txt and a failed analysis
// degrade to warnings; every other failure aborts with a classified *Error.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*model.ScrapeResponse, error) {
	log := zap.L().With(zap.String("url", rawURL))

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, wrapf(KindInvalidScheme, err, "Invalid URL.")
	}

	if gerr := validateTarget(ctx, u); gerr != nil {
		log.Info("scrape: target rejected",
			zap.String("kind", string(gerr.Kind)),
			zap.String("reason", gerr.Message),
		)
		return nil, gerr
	}

	warnings := make([]string, 0, 2)

	allowed, robotsWarnings := p.fetcher.checkRobots(ctx, u)
	if !allowed {
		log.Info("scrape: denied by robots.txt")
		return nil, errf(KindRobotsDenied, "robots.txt forbids scraping.")
	}
	warnings = append(warnings, robotsWarnings...)

	html, fetchWarnings, ferr := p.fetcher.fetchHTML(ctx, u)
	if ferr != nil {
		log.Warn("scrape: fetch failed",
			zap.String("kind", string(ferr.Kind)),
			zap.Error(ferr),
		)
		return nil, ferr
	}
	warnings = append(warnings, fetchWarnings...)

	ext, err := extract.Extract(html, u)
	if err != nil {
		if errors.Is(err, extract.ErrLoginWall) {
			log.Info("scrape: login wall detected")
			return nil, errf(KindLoginWall, "Login form detected; scraping aborted.")
		}
		return nil, wrapf(KindInternal, err, "Scrape failed unexpectedly.")
	}

	var enrichment *model.Enrichment
	if p.enricher != nil {
		enrichment, err = p.enricher.Enrich(ctx, ext)
		if err != nil {
			// Analysis is best-effort; the scrape still succeeds without it.
			log.Warn("scrape: analysis failed", zap.Error(err))
			enrichment = nil
		}
	}

	log.Info("scrape: complete",
		zap.Int("word_count", ext.WordCount),
		zap.Int("links", len(ext.Links)),
		zap.Int("images", len(ext.Images)),
		zap.Bool("enriched", enrichment != nil),
	)

	return &model.ScrapeResponse{
		FetchedURL: rawURL,
		Extraction: *ext,
		Enrichment: enrichment,
		Warnings:   warnings,
	}, nil
}
