package report

import (
	"errors"
	"os"
	"path/filepath"
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

func TestMagnitudes(t *testing.T) {
	events := []*models.SeismicEvent{
		withMagnitude(1.5, 0.2),
		withMagnitude(),
		withMagnitude(2.5),
		{},
	}

	values, missing := Magnitudes(events)
	if missing != 2 {
		t.Errorf("expected 2 events without reading, got %d", missing)
	}
	if len(values) != 2 || values[0] != 1.5 || values[1] != 2.5 {
		t.Errorf("unexpected values %v", values)
	}
}

func TestWriteMagnitudeHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magnitudes.png")
	events := []*models.SeismicEvent{
		withMagnitude(0.4), withMagnitude(1.1), withMagnitude(1.2), withMagnitude(2.9), {},
	}

	if err := WriteMagnitudeHistogram(path, events, 5); err != nil {
		t.Fatalf("WriteMagnitudeHistogram failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected histogram file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("histogram file is empty")
	}
}

func TestWriteMagnitudeHistogram_NoReadings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magnitudes.png")

	err := WriteMagnitudeHistogram(path, []*models.SeismicEvent{{}, {}}, 5)
	if !errors.Is(err, ErrNoMagnitudes) {
		t.Errorf("expected ErrNoMagnitudes, got %v", err)
	}
}
