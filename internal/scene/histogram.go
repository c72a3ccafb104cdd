package scene

import (
	"strconv"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

// NoMagnitudeKey buckets events without a primary magnitude reading.
const NoMagnitudeKey = "none"

// MagnitudeHistogram counts events per primary magnitude value, keyed by the
// shortest decimal form of the value.
func MagnitudeHistogram(events []*models.SeismicEvent) map[string]int {
	hist := make(map[string]int)
	for _, ev := range events {
		m, ok := ev.PrimaryMagnitude()
		if !ok {
			hist[NoMagnitudeKey]++
			continue
		}
		hist[strconv.FormatFloat(m, 'f', -1, 64)]++
	}
	return hist
}
