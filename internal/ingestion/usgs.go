package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

const usgsDateLayout = "2006-01-02T15:04:05.000Z"

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   *usgsGeometry  `json:"geometry"`
}
type usgsProperties struct {
	Mag  *float64 `json:"mag"`
	Time *int64   `json:"time"` // unix millis
}
type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// USGSSource reads a USGS GeoJSON summary feed (or an FDSN query with
// format=geojson) and converts each feature into an event record.
type USGSSource struct {
	URL    string
	Client *http.Client
}

func NewUSGSSource(url string, timeout time.Duration) *USGSSource {
	return &USGSSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *USGSSource) Name() string {
	return s.URL
}

func (s *USGSSource) Fetch(ctx context.Context) ([]*models.SeismicEvent, error) {
	body, err := get(ctx, s.Client, s.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var data usgsResponse
	if err := json.NewDecoder(body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	events := make([]*models.SeismicEvent, 0, len(data.Features))
	for _, f := range data.Features {
		events = append(events, fromUSGS(f))
	}
	return events, nil
}

func fromUSGS(f usgsFeature) *models.SeismicEvent {
	ev := &models.SeismicEvent{}
	if f.Properties.Time != nil {
		t := time.UnixMilli(*f.Properties.Time).UTC()
		epoch := float64(t.Unix())
		date := t.Format(usgsDateLayout)
		ev.Epoch = &epoch
		ev.Date = &date
	}
	if f.Geometry != nil && len(f.Geometry.Coordinates) >= 3 {
		c := f.Geometry.Coordinates
		ev.Location = &models.Location{Longitude: c[0], Latitude: c[1], Depth: c[2]}
	}
	if f.Properties.Mag != nil {
		ev.Magnitudes = []models.Magnitude{{Value: *f.Properties.Mag}}
	}
	return ev
}
