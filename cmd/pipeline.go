package main

import (
	"go.uber.org/zap"

	"github.com/sells-group/scrape-service/internal/config"
	"github.com/sells-group/scrape-service/internal/enrich"
	"github.com/sells-group/scrape-service/internal/scrape"
	"github.com/sells-group/scrape-service/pkg/anthropic"
)

// newPipeline wires the fetcher and, when an API key is configured, the AI
// analysis stage.
func newPipeline(cfg *config.Config) *scrape.Pipeline {
	fetcher := scrape.NewFetcher(cfg.Scrape)

	var enricher scrape.Enricher
	if cfg.Anthropic.Key != "" {
		enricher = enrich.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
	} else {
		zap.L().Info("anthropic key not set; ai analysis disabled")
	}

	return scrape.NewPipeline(fetcher, enricher)
}
