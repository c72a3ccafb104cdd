package api

import (
	"github.com/mr1hm/go-quake-scene/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// toGeoJSON skips events without a location; GeoJSON has no empty point.
func toGeoJSON(events []*models.SeismicEvent) FeatureCollection {
	features := make([]Feature, 0, len(events))

	for _, ev := range events {
		if ev.Location == nil {
			continue
		}
		props := map[string]any{
			"epoch":     ev.Epoch,
			"date":      ev.Date,
			"magnitude": nil,
		}
		if m, ok := ev.PrimaryMagnitude(); ok {
			props["magnitude"] = m
		}
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{ev.Location.Longitude, ev.Location.Latitude, ev.Location.Depth},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
