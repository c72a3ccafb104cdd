package models

// SeismicEvent is one record of an input batch. Pointer and slice fields are
// nil when the attribute was absent from the source document.
type SeismicEvent struct {
	Epoch      *float64    `json:"epoch,omitempty"` // unix seconds
	Date       *string     `json:"date,omitempty"`
	Location   *Location   `json:"location,omitempty"`
	Magnitudes []Magnitude `json:"magnitudos,omitempty"`
}

type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Depth     float64 `json:"depth"` // km below surface
}

type Magnitude struct {
	Value float64 `json:"value"`
}

// PrimaryMagnitude returns the first reading. An empty sequence counts as no reading.
func (e *SeismicEvent) PrimaryMagnitude() (float64, bool) {
	if len(e.Magnitudes) == 0 {
		return 0, false
	}
	return e.Magnitudes[0].Value, true
}
