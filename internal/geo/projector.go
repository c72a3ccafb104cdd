// Package geo maps geodetic coordinates onto the scene's flat Cartesian frame.
//
// The frame is a local tangent approximation around a reference point: the
// per-axis scale factors convert degrees to scene units at the reference
// latitude and are configured, never derived from spherical geometry.
//
// Axes:
//
//	x  east-west, sign set by Convention
//	y  vertical, negative below the surface (y = -depth)
//	z  north-south, z = ScaleLat * (lat - RefLatitude)
package geo

import (
	"fmt"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

// Convention fixes the sign of the x axis.
type Convention string

const (
	// RefMinusLon puts x = ScaleLon * (RefLongitude - lon): points east of
	// the reference land on negative x.
	RefMinusLon Convention = "ref-minus"
	// LonMinusRef puts x = ScaleLon * (lon - RefLongitude).
	LonMinusRef Convention = "lon-minus"
)

type Config struct {
	RefLongitude float64
	RefLatitude  float64
	ScaleLon     float64
	ScaleLat     float64
	Convention   Convention
}

// DefaultConfig is centred on the Campi Flegrei caldera.
func DefaultConfig() Config {
	return Config{
		RefLongitude: 14.1386,
		RefLatitude:  40.8249,
		ScaleLon:     84.14,
		ScaleLat:     111.12,
		Convention:   RefMinusLon,
	}
}

type Projector struct {
	cfg  Config
	sign float64
}

func NewProjector(cfg Config) (*Projector, error) {
	var sign float64
	switch cfg.Convention {
	case RefMinusLon:
		sign = -1
	case LonMinusRef:
		sign = 1
	default:
		return nil, fmt.Errorf("unknown projection convention: %q", cfg.Convention)
	}
	if cfg.ScaleLon == 0 || cfg.ScaleLat == 0 {
		return nil, fmt.Errorf("projection scale factors must be non-zero")
	}
	return &Projector{cfg: cfg, sign: sign}, nil
}

func (p *Projector) Config() Config {
	return p.cfg
}

// Project converts longitude/latitude in degrees and depth in source units
// to scene coordinates. NaN inputs yield NaN outputs.
func (p *Projector) Project(longitude, latitude, depth float64) models.Vec3 {
	return models.Vec3{
		X: p.sign * p.cfg.ScaleLon * (longitude - p.cfg.RefLongitude),
		Y: -depth,
		Z: p.cfg.ScaleLat * (latitude - p.cfg.RefLatitude),
	}
}

// ProjectLocation is Project over a models.Location.
func (p *Projector) ProjectLocation(loc models.Location) models.Vec3 {
	return p.Project(loc.Longitude, loc.Latitude, loc.Depth)
}

// Inverse recovers (longitude, latitude, depth) from a scene position.
func (p *Projector) Inverse(v models.Vec3) (longitude, latitude, depth float64) {
	longitude = p.cfg.RefLongitude + v.X/(p.sign*p.cfg.ScaleLon)
	latitude = p.cfg.RefLatitude + v.Z/p.cfg.ScaleLat
	depth = -v.Y
	return longitude, latitude, depth
}
