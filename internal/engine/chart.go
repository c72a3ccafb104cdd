// Package engine provides a headless render engine for the scene: spheres are
// kept in memory and drawn as a go-echarts 3D scatter page on demand.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

var ErrUnknownHandle = errors.New("unknown sphere handle")

type sphere struct {
	seq      uint64
	radius   float64
	color    models.Color
	position models.Vec3
	inScene  bool
}

// Stats counts allocated spheres and the subset currently in the scene.
type Stats struct {
	Allocated int `json:"allocated"`
	InScene   int `json:"in_scene"`
}

type ChartEngine struct {
	mu      sync.RWMutex
	spheres map[models.Handle]*sphere
	seq     uint64
	title   string
}

func NewChartEngine(title string) *ChartEngine {
	return &ChartEngine{
		spheres: make(map[models.Handle]*sphere),
		title:   title,
	}
}

func (e *ChartEngine) CreateSphere(radius float64, color models.Color, position models.Vec3) (models.Handle, error) {
	if radius < 0 {
		return "", fmt.Errorf("negative sphere radius: %v", radius)
	}

	h := models.Handle(uuid.NewString())

	e.mu.Lock()
	e.seq++
	e.spheres[h] = &sphere{seq: e.seq, radius: radius, color: color, position: position}
	e.mu.Unlock()

	return h, nil
}

func (e *ChartEngine) Dispose(h models.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.spheres[h]; !ok {
		slog.Warn("dispose of unknown sphere", "handle", h)
		return
	}
	delete(e.spheres, h)
}

func (e *ChartEngine) AddToScene(h models.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.spheres[h]
	if !ok {
		return fmt.Errorf("add %s: %w", h, ErrUnknownHandle)
	}
	s.inScene = true
	return nil
}

func (e *ChartEngine) RemoveFromScene(h models.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.spheres[h]; ok {
		s.inScene = false
	}
}

func (e *ChartEngine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Stats{Allocated: len(e.spheres)}
	for _, s := range e.spheres {
		if s.inScene {
			st.InScene++
		}
	}
	return st
}

const (
	minSymbolPx = 3
	maxSymbolPx = 30
)

// symbolSizeFunc reads the pixel size carried as the fourth value of a point.
var symbolSizeFunc = opts.FuncOpts("function (value) { return value[3]; }")

// Render draws every in-scene sphere as an HTML page. Each point carries
// [x, y, z, size] where size is the sphere radius mapped onto a pixel range;
// the radius itself is shown in the tooltip name.
func (e *ChartEngine) Render(w io.Writer) error {
	visible := e.visible()
	data := seriesData(visible)

	chart := charts.NewScatter3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: e.title, Theme: "dark", Width: "1200px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: e.title, Subtitle: fmt.Sprintf("spheres=%d", len(visible))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	chart.AddSeries("events", data, withSymbolSize(symbolSizeFunc))

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("error rendering scene chart: %w", err)
	}
	return nil
}

func withSymbolSize(size interface{}) charts.SeriesOpts {
	return func(s *charts.SingleSeries) {
		s.SymbolSize = size
	}
}

func seriesData(visible []sphere) []opts.Chart3DData {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range visible {
		lo = math.Min(lo, s.radius)
		hi = math.Max(hi, s.radius)
	}

	data := make([]opts.Chart3DData, 0, len(visible))
	for _, s := range visible {
		data = append(data, opts.Chart3DData{
			Name:      fmt.Sprintf("r=%.3f", s.radius),
			Value:     []interface{}{s.position.X, s.position.Y, s.position.Z, symbolPixels(s.radius, lo, hi)},
			ItemStyle: &opts.ItemStyle{Color: s.color.Hex()},
		})
	}
	return data
}

// symbolPixels maps r linearly from [lo, hi] onto [minSymbolPx, maxSymbolPx].
// When every visible sphere has the same radius they all get the middle size.
func symbolPixels(r, lo, hi float64) float64 {
	if hi <= lo {
		return (minSymbolPx + maxSymbolPx) / 2.0
	}
	t := (r - lo) / (hi - lo)
	return minSymbolPx + t*(maxSymbolPx-minSymbolPx)
}

func (e *ChartEngine) visible() []sphere {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]sphere, 0, len(e.spheres))
	for _, s := range e.spheres {
		if s.inScene {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
