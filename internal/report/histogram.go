package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

var ErrNoMagnitudes = errors.New("no events with a magnitude reading")

// Magnitudes collects the primary magnitude of every event that has one,
// along with how many events had none.
func Magnitudes(events []*models.SeismicEvent) (plotter.Values, int) {
	values := make(plotter.Values, 0, len(events))
	missing := 0
	for _, ev := range events {
		m, ok := ev.PrimaryMagnitude()
		if !ok {
			missing++
			continue
		}
		values = append(values, m)
	}
	return values, missing
}

// WriteMagnitudeHistogram saves a histogram of primary magnitudes. The file
// format follows the extension of path (png, svg, pdf...).
func WriteMagnitudeHistogram(path string, events []*models.SeismicEvent, bins int) error {
	values, missing := Magnitudes(events)
	if len(values) == 0 {
		return ErrNoMagnitudes
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Magnitude distribution (%d events, %d without reading)", len(values), missing)
	p.X.Label.Text = "Magnitude"
	p.Y.Label.Text = "Events"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}
	return nil
}
