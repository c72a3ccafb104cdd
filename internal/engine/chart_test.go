package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

func rgb(r, g, b uint8) models.Color {
	return models.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func TestChartEngine_Lifecycle(t *testing.T) {
	e := NewChartEngine("test")

	h, err := e.CreateSphere(0.1, rgb(255, 0, 0), models.Vec3{X: 1, Y: -2, Z: 3})
	if err != nil {
		t.Fatalf("CreateSphere failed: %v", err)
	}
	if st := e.Stats(); st.Allocated != 1 || st.InScene != 0 {
		t.Errorf("expected 1 allocated, 0 in scene, got %+v", st)
	}

	if err := e.AddToScene(h); err != nil {
		t.Fatalf("AddToScene failed: %v", err)
	}
	if st := e.Stats(); st.InScene != 1 {
		t.Errorf("expected 1 in scene, got %+v", st)
	}

	e.RemoveFromScene(h)
	if st := e.Stats(); st.Allocated != 1 || st.InScene != 0 {
		t.Errorf("expected sphere allocated but out of scene, got %+v", st)
	}

	e.Dispose(h)
	if st := e.Stats(); st.Allocated != 0 {
		t.Errorf("expected nothing allocated, got %+v", st)
	}

	// Disposing twice is harmless.
	e.Dispose(h)
}

func TestChartEngine_DistinctHandles(t *testing.T) {
	e := NewChartEngine("test")

	seen := make(map[models.Handle]bool)
	for i := 0; i < 100; i++ {
		h, err := e.CreateSphere(0, models.Color{}, models.Vec3{})
		if err != nil {
			t.Fatalf("CreateSphere failed: %v", err)
		}
		if seen[h] {
			t.Fatalf("duplicate handle %s", h)
		}
		seen[h] = true
	}
}

func TestChartEngine_Errors(t *testing.T) {
	e := NewChartEngine("test")

	if _, err := e.CreateSphere(-1, models.Color{}, models.Vec3{}); err == nil {
		t.Error("expected error for negative radius")
	}
	if err := e.AddToScene("missing"); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestChartEngine_RenderOnlyInScene(t *testing.T) {
	e := NewChartEngine("Campi Flegrei")

	shown, _ := e.CreateSphere(0.25, rgb(10, 11, 12), models.Vec3{X: 1, Y: -2, Z: 3})
	hidden, _ := e.CreateSphere(0.5, rgb(12, 13, 14), models.Vec3{X: 4, Y: -5, Z: 6})
	if err := e.AddToScene(shown); err != nil {
		t.Fatal(err)
	}
	if err := e.AddToScene(hidden); err != nil {
		t.Fatal(err)
	}
	e.RemoveFromScene(hidden)

	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	page := buf.String()

	if !strings.Contains(page, "Campi Flegrei") {
		t.Error("expected title in page")
	}
	if !strings.Contains(page, "#0a0b0c") {
		t.Error("expected in-scene sphere color in page")
	}
	if strings.Contains(page, "#0c0d0e") {
		t.Error("sphere removed from scene should not be drawn")
	}
	if !strings.Contains(page, "spheres=1") {
		t.Error("expected sphere count in subtitle")
	}
}

func TestChartEngine_SymbolSizeFollowsRadius(t *testing.T) {
	e := NewChartEngine("sizes")

	small, _ := e.CreateSphere(0.01, rgb(255, 0, 0), models.Vec3{})
	large, _ := e.CreateSphere(0.5, rgb(0, 0, 255), models.Vec3{X: 1})
	for _, h := range []models.Handle{small, large} {
		if err := e.AddToScene(h); err != nil {
			t.Fatal(err)
		}
	}

	data := seriesData(e.visible())
	if len(data) != 2 {
		t.Fatalf("expected 2 points, got %d", len(data))
	}
	smallPx := data[0].Value[3].(float64)
	largePx := data[1].Value[3].(float64)
	if smallPx != minSymbolPx || largePx != maxSymbolPx {
		t.Errorf("expected sizes %d and %d, got %v and %v", minSymbolPx, maxSymbolPx, smallPx, largePx)
	}

	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	page := buf.String()
	if !strings.Contains(page, "symbolSize") {
		t.Error("expected symbolSize in rendered page")
	}
	if !strings.Contains(page, "value[3]") {
		t.Error("expected symbol size to read the fourth point value")
	}
}

func TestSymbolPixels(t *testing.T) {
	if got := symbolPixels(0.2, 0.2, 0.2); got != (minSymbolPx+maxSymbolPx)/2.0 {
		t.Errorf("equal radii should get the middle size, got %v", got)
	}
	if got := symbolPixels(0.25, 0, 0.5); got != (minSymbolPx+maxSymbolPx)/2.0 {
		t.Errorf("expected midpoint size, got %v", got)
	}
	prev := symbolPixels(0, 0, 1)
	for r := 0.1; r <= 1; r += 0.1 {
		got := symbolPixels(r, 0, 1)
		if got <= prev {
			t.Fatalf("size not increasing at r=%v", r)
		}
		prev = got
	}
}
