package geo

import (
	"math"
	"testing"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestNewProjector_Validation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Convention = "sideways"
	if _, err := NewProjector(cfg); err == nil {
		t.Error("expected error for unknown convention")
	}

	cfg = DefaultConfig()
	cfg.ScaleLat = 0
	if _, err := NewProjector(cfg); err == nil {
		t.Error("expected error for zero scale")
	}
}

func TestProject_ReferencePointIsOrigin(t *testing.T) {
	p, _ := NewProjector(DefaultConfig())
	cfg := p.Config()

	got := p.Project(cfg.RefLongitude, cfg.RefLatitude, 0)
	if !near(got.X, 0) || !near(got.Y, 0) || !near(got.Z, 0) {
		t.Errorf("expected origin, got %+v", got)
	}
}

func TestProject_Conventions(t *testing.T) {
	tests := []struct {
		convention Convention
		wantX      float64
	}{
		{RefMinusLon, -84.14},
		{LonMinusRef, 84.14},
	}

	for _, tt := range tests {
		t.Run(string(tt.convention), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Convention = tt.convention
			p, err := NewProjector(cfg)
			if err != nil {
				t.Fatal(err)
			}

			// One degree east, one degree north, 3 km down.
			got := p.Project(cfg.RefLongitude+1, cfg.RefLatitude+1, 3)
			if !near(got.X, tt.wantX) {
				t.Errorf("expected x %v, got %v", tt.wantX, got.X)
			}
			if !near(got.Y, -3) {
				t.Errorf("expected y -3, got %v", got.Y)
			}
			if !near(got.Z, 111.12) {
				t.Errorf("expected z 111.12, got %v", got.Z)
			}
		})
	}
}

func TestProject_RoundTrip(t *testing.T) {
	locations := []models.Location{
		{Longitude: 14.1, Latitude: 40.8, Depth: 5},
		{Longitude: 14.1386, Latitude: 40.8249, Depth: 0},
		{Longitude: -122.4, Latitude: 37.8, Depth: 12.5},
		{Longitude: 14.2, Latitude: 40.7, Depth: -0.3},
	}

	for _, convention := range []Convention{RefMinusLon, LonMinusRef} {
		cfg := DefaultConfig()
		cfg.Convention = convention
		p, _ := NewProjector(cfg)

		for _, loc := range locations {
			lon, lat, depth := p.Inverse(p.ProjectLocation(loc))
			if !near(lon, loc.Longitude) || !near(lat, loc.Latitude) || !near(depth, loc.Depth) {
				t.Errorf("%s: round trip of %+v gave (%v, %v, %v)", convention, loc, lon, lat, depth)
			}
		}
	}
}

func TestProject_NaNPropagates(t *testing.T) {
	p, _ := NewProjector(DefaultConfig())

	got := p.Project(math.NaN(), 40, 1)
	if !math.IsNaN(got.X) {
		t.Errorf("expected NaN x, got %v", got.X)
	}
	if math.IsNaN(got.Z) {
		t.Errorf("latitude was finite, z should be too")
	}
}
