package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mr1hm/go-quake-scene/internal/config"
	"github.com/mr1hm/go-quake-scene/internal/repository"
	"github.com/mr1hm/go-quake-scene/internal/store"
)

// NewSources builds the ordered batch list: files, then URLs, then USGS
// feeds, then every catalogue batch. catalog may be nil.
func NewSources(ctx context.Context, cfg *config.Config, catalog repository.EventCatalog) ([]store.Source, error) {
	var sources []store.Source

	for _, path := range cfg.Sources.Files {
		sources = append(sources, &FileSource{Path: path})
	}
	for _, url := range cfg.Sources.URLs {
		sources = append(sources, NewHTTPSource(url, cfg.Sources.Timeout))
	}
	for _, url := range cfg.Sources.USGSURLs {
		sources = append(sources, NewUSGSSource(url, cfg.Sources.Timeout))
	}

	if catalog != nil {
		batches, err := catalog.Batches(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing catalogue batches: %w", err)
		}
		for _, b := range batches {
			sources = append(sources, &repository.CatalogSource{Catalog: catalog, Batch: b})
		}
	}

	for _, s := range sources {
		slog.Debug("source configured", "name", s.Name())
	}
	return sources, nil
}
