package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

// Source yields one batch of events, e.g. one calendar year.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]*models.SeismicEvent, error)
}

// BatchError reports which batch made a load fail.
type BatchError struct {
	Index int
	Name  string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("error loading batch %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Store owns every loaded event. Events are never mutated after Load.
type Store struct {
	mu     sync.RWMutex
	events []*models.SeismicEvent
	loaded bool
}

func New() *Store {
	return &Store{}
}

// Load fetches all batches and concatenates them in source order. A failing
// batch fails the whole load and nothing is kept, so Load may be retried.
// Once a load has succeeded, later calls return the same events.
func (s *Store) Load(ctx context.Context, sources ...Source) ([]*models.SeismicEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.snapshot(), nil
	}

	batches := make([][]*models.SeismicEvent, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			events, err := src.Fetch(gctx)
			if err != nil {
				return &BatchError{Index: i, Name: src.Name(), Err: err}
			}
			batches[i] = events
			slog.Debug("batch fetched", "batch", src.Name(), "count", len(events))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	events := make([]*models.SeismicEvent, 0, total)
	for _, b := range batches {
		events = append(events, b...)
	}

	s.events = events
	s.loaded = true
	logSummary(events, len(sources))

	return s.snapshot(), nil
}

// All returns the loaded events in load order. The slice is a copy; the
// events themselves must be treated as read-only.
func (s *Store) All() []*models.SeismicEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// EpochRange returns the smallest and largest epoch among events that have
// one. ok is false when no event carries an epoch.
func (s *Store) EpochRange() (lo, hi float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	epochs := epochsOf(s.events)
	if len(epochs) == 0 {
		return 0, 0, false
	}
	return floats.Min(epochs), floats.Max(epochs), true
}

func (s *Store) snapshot() []*models.SeismicEvent {
	out := make([]*models.SeismicEvent, len(s.events))
	copy(out, s.events)
	return out
}

func epochsOf(events []*models.SeismicEvent) []float64 {
	epochs := make([]float64, 0, len(events))
	for _, ev := range events {
		if ev.Epoch != nil {
			epochs = append(epochs, *ev.Epoch)
		}
	}
	return epochs
}

func logSummary(events []*models.SeismicEvent, batches int) {
	var mags []float64
	located := 0
	for _, ev := range events {
		if m, ok := ev.PrimaryMagnitude(); ok {
			mags = append(mags, m)
		}
		if ev.Location != nil {
			located++
		}
	}

	attrs := []any{"batches", batches, "events", len(events), "located", located, "with_magnitude", len(mags)}
	if len(mags) > 0 {
		attrs = append(attrs, "mean_magnitude", stat.Mean(mags, nil), "max_magnitude", floats.Max(mags))
	}
	slog.Info("events loaded", attrs...)
}
