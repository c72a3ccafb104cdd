package models

import "fmt"

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is a linear RGB triple with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// RenderedPoint is the scene-side counterpart of an event that passed the
// active filter. Event is a lookup reference; the handle belongs to whoever
// created the point.
type RenderedPoint struct {
	Event    *SeismicEvent `json:"-"`
	Position Vec3          `json:"position"`
	Radius   float64       `json:"radius"`
	Color    Color         `json:"color"`
	Handle   Handle        `json:"handle"`
}

// Handle identifies a sphere resource inside a render engine.
type Handle string
