package repository

import (
	"context"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

// EventCatalog stores named event batches, one row per event in batch order.
type EventCatalog interface {
	ImportBatch(ctx context.Context, name string, events []*models.SeismicEvent) (int, error)
	LoadBatch(ctx context.Context, name string) ([]*models.SeismicEvent, error)
	Batches(ctx context.Context) ([]string, error)
}

// CatalogSource exposes one catalogue batch as a load source.
type CatalogSource struct {
	Catalog EventCatalog
	Batch   string
}

func (s *CatalogSource) Name() string {
	return "catalog:" + s.Batch
}

func (s *CatalogSource) Fetch(ctx context.Context) ([]*models.SeismicEvent, error) {
	return s.Catalog.LoadBatch(ctx, s.Batch)
}
