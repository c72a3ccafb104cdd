package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-quake-scene/internal/filter"
	"github.com/mr1hm/go-quake-scene/internal/geo"
	"github.com/mr1hm/go-quake-scene/internal/magnitude"
	"github.com/mr1hm/go-quake-scene/internal/models"
	"github.com/mr1hm/go-quake-scene/internal/observability"
)

// ErrRebuildInProgress is returned when a rebuild or teardown is already running.
var ErrRebuildInProgress = errors.New("rebuild already in progress")

// Engine is the slice of a render engine the synchronizer drives.
type Engine interface {
	CreateSphere(radius float64, color models.Color, position models.Vec3) (models.Handle, error)
	Dispose(h models.Handle)
	AddToScene(h models.Handle) error
	RemoveFromScene(h models.Handle)
}

// Events is the read side of the event store.
type Events interface {
	All() []*models.SeismicEvent
}

// Mode selects how a rebuild reconciles the engine with the passing set.
type Mode string

const (
	// ModeFull releases every sphere and recreates the passing set on each rebuild.
	ModeFull Mode = "full"
	// ModeIncremental keeps spheres whose event still passes and only
	// creates or releases the difference.
	ModeIncremental Mode = "incremental"
)

// Result summarises one rebuild.
type Result struct {
	Range     filter.Range   `json:"range"`
	Created   int            `json:"created"`
	Destroyed int            `json:"destroyed"`
	Live      int            `json:"live"`
	Histogram map[string]int `json:"histogram,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithMode sets the rebuild strategy; the default is ModeFull.
func WithMode(m Mode) Option {
	return func(s *Synchronizer) { s.mode = m }
}

// WithMetrics records rebuilds into m instead of an unregistered set.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// WithClock sets the clock used to time rebuilds.
func WithClock(c clockwork.Clock) Option {
	return func(s *Synchronizer) { s.clock = c }
}

// Synchronizer keeps the engine's spheres equal to the set of located events
// that pass the active filter. It is the only owner of sphere handles.
type Synchronizer struct {
	events    Events
	engine    Engine
	projector *geo.Projector
	encoder   *magnitude.Encoder
	metrics   *observability.Metrics
	clock     clockwork.Clock
	mode      Mode

	busy atomic.Bool

	mu     sync.RWMutex
	points []*models.RenderedPoint
	active filter.Range
}

// New builds a Synchronizer with an empty scene.
func New(events Events, engine Engine, projector *geo.Projector, encoder *magnitude.Encoder, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		events:    events,
		engine:    engine,
		projector: projector,
		encoder:   encoder,
		mode:      ModeFull,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

// Rebuild re-evaluates the filter over every event and brings the engine in
// line with the result. A call made while another rebuild is running returns
// ErrRebuildInProgress without touching the scene. If the engine fails, every
// sphere created so far is released and the scene is left empty.
func (s *Synchronizer) Rebuild(r filter.Range) (Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.RebuildsTotal.WithLabelValues("busy").Inc()
		return Result{}, ErrRebuildInProgress
	}
	defer s.busy.Store(false)

	start := s.clock.Now()
	events := s.events.All()
	hist := MagnitudeHistogram(events)
	s.recordHistogram(hist)

	s.mu.Lock()
	var (
		res Result
		err error
	)
	if s.mode == ModeIncremental {
		res, err = s.rebuildIncremental(events, r)
	} else {
		res, err = s.rebuildFull(events, r)
	}
	res.Live = len(s.points)
	s.mu.Unlock()

	res.Range = r
	res.Histogram = hist
	res.Duration = s.clock.Since(start)

	s.metrics.RebuildDuration.Observe(res.Duration.Seconds())
	s.metrics.LiveSpheres.Set(float64(res.Live))
	if err != nil {
		s.metrics.RebuildsTotal.WithLabelValues("error").Inc()
		slog.Error("scene rebuild failed", "range", r.String(), "error", err)
		return res, err
	}
	s.metrics.RebuildsTotal.WithLabelValues("ok").Inc()

	slog.Info("scene rebuilt",
		"range", r.String(),
		"mode", s.mode,
		"created", res.Created,
		"destroyed", res.Destroyed,
		"live", res.Live,
		"duration", res.Duration,
	)
	return res, nil
}

func (s *Synchronizer) rebuildFull(events []*models.SeismicEvent, r filter.Range) (Result, error) {
	res := Result{Destroyed: s.releaseAll()}

	points := make([]*models.RenderedPoint, 0)
	for _, ev := range events {
		if !r.Passes(ev) || ev.Location == nil {
			continue
		}
		p, err := s.create(ev)
		if err != nil {
			res.Destroyed += s.release(points)
			return res, err
		}
		points = append(points, p)
		res.Created++
	}

	s.points = points
	s.active = r
	return res, nil
}

func (s *Synchronizer) rebuildIncremental(events []*models.SeismicEvent, r filter.Range) (Result, error) {
	var res Result

	current := make(map[*models.SeismicEvent]*models.RenderedPoint, len(s.points))
	for _, p := range s.points {
		current[p.Event] = p
	}

	want := make(map[*models.SeismicEvent]bool)
	for _, ev := range events {
		if r.Passes(ev) && ev.Location != nil {
			want[ev] = true
		}
	}

	for ev, p := range current {
		if !want[ev] {
			res.Destroyed += s.release([]*models.RenderedPoint{p})
			delete(current, ev)
		}
	}

	points := make([]*models.RenderedPoint, 0, len(want))
	for _, ev := range events {
		if !want[ev] {
			continue
		}
		if p, ok := current[ev]; ok {
			points = append(points, p)
			delete(current, ev)
			continue
		}
		p, err := s.create(ev)
		if err != nil {
			res.Destroyed += s.release(points)
			for _, kept := range current {
				res.Destroyed += s.release([]*models.RenderedPoint{kept})
			}
			s.points = nil
			return res, err
		}
		points = append(points, p)
		res.Created++
	}

	s.points = points
	s.active = r
	return res, nil
}

func (s *Synchronizer) create(ev *models.SeismicEvent) (*models.RenderedPoint, error) {
	pos := s.projector.ProjectLocation(*ev.Location)
	radius := s.encoder.Radius(ev)
	color := s.encoder.Color(ev)

	h, err := s.engine.CreateSphere(radius, color, pos)
	if err != nil {
		return nil, fmt.Errorf("error creating sphere: %w", err)
	}
	s.metrics.SpheresCreated.Inc()

	if err := s.engine.AddToScene(h); err != nil {
		s.engine.Dispose(h)
		s.metrics.SpheresDisposed.Inc()
		return nil, fmt.Errorf("error adding sphere to scene: %w", err)
	}

	return &models.RenderedPoint{
		Event:    ev,
		Position: pos,
		Radius:   radius,
		Color:    color,
		Handle:   h,
	}, nil
}

func (s *Synchronizer) release(points []*models.RenderedPoint) int {
	for _, p := range points {
		s.engine.RemoveFromScene(p.Handle)
		s.engine.Dispose(p.Handle)
	}
	s.metrics.SpheresDisposed.Add(float64(len(points)))
	return len(points)
}

func (s *Synchronizer) releaseAll() int {
	n := s.release(s.points)
	s.points = nil
	return n
}

// Teardown releases every sphere, e.g. on shutdown.
func (s *Synchronizer) Teardown() (int, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return 0, ErrRebuildInProgress
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	n := s.releaseAll()
	s.active = filter.Range{}
	s.mu.Unlock()

	s.metrics.LiveSpheres.Set(0)
	slog.Info("scene torn down", "destroyed", n)
	return n, nil
}

// Points returns a copy of the rendered points in event order.
func (s *Synchronizer) Points() []models.RenderedPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.RenderedPoint, len(s.points))
	for i, p := range s.points {
		out[i] = *p
	}
	return out
}

func (s *Synchronizer) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Active returns the range of the last successful rebuild.
func (s *Synchronizer) Active() filter.Range {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Synchronizer) recordHistogram(hist map[string]int) {
	s.metrics.MagnitudeEvents.Reset()
	for k, n := range hist {
		s.metrics.MagnitudeEvents.WithLabelValues(k).Set(float64(n))
	}
	slog.Debug("magnitude histogram", "buckets", len(hist), "histogram", hist)
}
