package filter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

const DateLayout = "2006-01-02"

var ErrMalformedDate = errors.New("malformed date")

// Range is an inclusive calendar-day range in YYYY-MM-DD form.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r Range) Validate() error {
	if _, err := time.Parse(DateLayout, r.Start); err != nil {
		return fmt.Errorf("start %q: %w", r.Start, ErrMalformedDate)
	}
	if _, err := time.Parse(DateLayout, r.End); err != nil {
		return fmt.Errorf("end %q: %w", r.End, ErrMalformedDate)
	}
	return nil
}

func (r Range) String() string {
	return r.Start + ".." + r.End
}

// RangeFromEpochs builds the day range covering two unix timestamps.
func RangeFromEpochs(lo, hi float64) Range {
	return Range{
		Start: epochDay(lo),
		End:   epochDay(hi),
	}
}

// epochDay floors so that fractional pre-1970 epochs land on the earlier day.
func epochDay(epoch float64) string {
	return time.Unix(int64(math.Floor(epoch)), 0).UTC().Format(DateLayout)
}

// Passes reports whether ev falls inside [start, end].
//
// An event whose date string starts with either bound passes before any
// numeric check, so timestamps later in the end day are still admitted. Other
// events pass when start-of-day(start) <= epoch <= start-of-day(end), in UTC.
// Events missing an epoch or a date never pass. A bound that does not parse
// makes the numeric comparison fail.
func Passes(ev *models.SeismicEvent, start, end string) bool {
	if ev.Epoch == nil || ev.Date == nil {
		return false
	}
	if strings.HasPrefix(*ev.Date, start) || strings.HasPrefix(*ev.Date, end) {
		return true
	}

	startTime, err := time.Parse(DateLayout, start)
	if err != nil {
		return false
	}
	endTime, err := time.Parse(DateLayout, end)
	if err != nil {
		return false
	}
	epoch := *ev.Epoch
	return float64(startTime.Unix()) <= epoch && epoch <= float64(endTime.Unix())
}

// Passes is the method form used by the synchronizer.
func (r Range) Passes(ev *models.SeismicEvent) bool {
	return Passes(ev, r.Start, r.End)
}
