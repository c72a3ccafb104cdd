// Package render redraws the scene on a fixed tick. A frame only reads the
// engine; nothing here ever triggers a rebuild.
package render

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-quake-scene/internal/observability"
)

// FrameFunc draws one frame.
type FrameFunc func(ctx context.Context) error

type Loop struct {
	clock    clockwork.Clock
	interval time.Duration
	frame    FrameFunc
	metrics  *observability.Metrics
	frames   atomic.Uint64
}

func NewLoop(clock clockwork.Clock, interval time.Duration, frame FrameFunc, metrics *observability.Metrics) *Loop {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Loop{
		clock:    clock,
		interval: interval,
		frame:    frame,
		metrics:  metrics,
	}
}

// Run draws a first frame immediately, then one per tick until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("render loop started", "interval", l.interval)
	l.draw(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("render loop stopped", "frames", l.frames.Load())
			return
		case <-ticker.Chan():
			l.draw(ctx)
		}
	}
}

func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

func (l *Loop) draw(ctx context.Context) {
	if err := l.frame(ctx); err != nil {
		slog.Error("frame failed", "error", err)
		return
	}
	l.frames.Add(1)
	l.metrics.FramesRendered.Inc()
}

// Renderer draws the current scene.
type Renderer interface {
	Render(w io.Writer) error
}

// Snapshot keeps the last successfully drawn page.
type Snapshot struct {
	mu      sync.RWMutex
	page    []byte
	drawnAt time.Time
}

// Frame returns a FrameFunc that draws r into the snapshot.
func (s *Snapshot) Frame(r Renderer, clock clockwork.Clock) FrameFunc {
	return func(ctx context.Context) error {
		var buf bytes.Buffer
		if err := r.Render(&buf); err != nil {
			return err
		}
		s.mu.Lock()
		s.page = buf.Bytes()
		s.drawnAt = clock.Now()
		s.mu.Unlock()
		return nil
	}
}

// Page returns the last drawn page; nil before the first frame.
func (s *Snapshot) Page() ([]byte, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page, s.drawnAt
}
