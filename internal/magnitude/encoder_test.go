package magnitude

import (
	"math"
	"testing"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

func withMagnitude(values ...float64) *models.SeismicEvent {
	ev := &models.SeismicEvent{}
	for _, v := range values {
		ev.Magnitudes = append(ev.Magnitudes, models.Magnitude{Value: v})
	}
	return ev
}

func TestColor_Gradient(t *testing.T) {
	e := NewEncoder(DefaultConfig())

	tests := []struct {
		name string
		m    float64
		want models.Color
	}{
		{"floor", 0, models.Color{R: 0, G: 0, B: 1}},
		{"below floor clamps", -2, models.Color{R: 0, G: 0, B: 1}},
		{"midpoint", 2, models.Color{R: 0.5, G: 0, B: 0.5}},
		{"ceiling", 4, models.Color{R: 1, G: 0, B: 0}},
		{"above ceiling clamps", 7.5, models.Color{R: 1, G: 0, B: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Color(withMagnitude(tt.m))
			if got != tt.want {
				t.Errorf("Color(%v) = %+v, want %+v", tt.m, got, tt.want)
			}
		})
	}
}

func TestColor_UsesFirstReading(t *testing.T) {
	e := NewEncoder(DefaultConfig())

	got := e.Color(withMagnitude(4, 0))
	if got != (models.Color{R: 1}) {
		t.Errorf("expected red from first reading, got %+v", got)
	}
}

func TestRadius_Formula(t *testing.T) {
	e := NewEncoder(DefaultConfig())

	want := math.Cbrt(3*1000/(4*math.Pi)) / 100
	if got := e.Radius(withMagnitude(3)); math.Abs(got-want) > 1e-12 {
		t.Errorf("Radius(3) = %v, want %v", got, want)
	}
}

func TestRadius_Monotonic(t *testing.T) {
	prev := RadiusFor(-10)
	if prev < 0 {
		t.Fatalf("radius must not be negative, got %v", prev)
	}
	for m := -9.5; m <= 9; m += 0.5 {
		r := RadiusFor(m)
		if r <= prev {
			t.Fatalf("radius not increasing at m=%v: %v <= %v", m, r, prev)
		}
		prev = r
	}
}

func TestDefaults_NoMagnitude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultRadius = 0.05
	cfg.DefaultColor = models.Color{R: 0.2, G: 0.2, B: 0.2}
	e := NewEncoder(cfg)

	for name, ev := range map[string]*models.SeismicEvent{
		"absent": {},
		"empty":  {Magnitudes: []models.Magnitude{}},
	} {
		if got := e.Radius(ev); got != 0.05 {
			t.Errorf("%s: expected default radius, got %v", name, got)
		}
		if got := e.Color(ev); got != cfg.DefaultColor {
			t.Errorf("%s: expected default color, got %+v", name, got)
		}
	}
}

func TestColor_CustomBounds(t *testing.T) {
	e := NewEncoder(Config{MinMagnitude: 2, MaxMagnitude: 6})

	if got := e.Color(withMagnitude(4)); got != (models.Color{R: 0.5, B: 0.5}) {
		t.Errorf("expected midpoint, got %+v", got)
	}
}
