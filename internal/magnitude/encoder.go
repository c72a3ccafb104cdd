package magnitude

import (
	"math"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

// Config gathers every constant the visual encoding depends on.
type Config struct {
	// Color gradient bounds. Magnitudes are clamped to [MinMagnitude, MaxMagnitude]
	// before being normalized.
	MinMagnitude float64
	MaxMagnitude float64

	// Used for events without a magnitude reading.
	DefaultRadius float64
	DefaultColor  models.Color
}

func DefaultConfig() Config {
	return Config{
		MinMagnitude:  0,
		MaxMagnitude:  4,
		DefaultRadius: 0,
		DefaultColor:  models.Color{R: 0, G: 0, B: 1},
	}
}

type Encoder struct {
	cfg Config
}

func NewEncoder(cfg Config) *Encoder {
	return &Encoder{cfg: cfg}
}

// Radius treats 10^m as a volume and returns the matching sphere radius,
// scaled down by 100.
func (e *Encoder) Radius(ev *models.SeismicEvent) float64 {
	m, ok := ev.PrimaryMagnitude()
	if !ok {
		return e.cfg.DefaultRadius
	}
	return RadiusFor(m)
}

// Color maps the primary magnitude onto a blue-to-red gradient with no green.
func (e *Encoder) Color(ev *models.SeismicEvent) models.Color {
	m, ok := ev.PrimaryMagnitude()
	if !ok {
		return e.cfg.DefaultColor
	}
	c := e.normalize(m)
	return models.Color{R: c, G: 0, B: 1 - c}
}

func (e *Encoder) normalize(m float64) float64 {
	span := e.cfg.MaxMagnitude - e.cfg.MinMagnitude
	if span <= 0 {
		return 0
	}
	clamped := math.Min(math.Max(m, e.cfg.MinMagnitude), e.cfg.MaxMagnitude)
	return (clamped - e.cfg.MinMagnitude) / span
}

func RadiusFor(m float64) float64 {
	return math.Cbrt(3*math.Pow(10, m)/(4*math.Pi)) / 100
}
