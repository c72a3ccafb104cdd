package scene

import (
	"context"
	"fmt"

	"github.com/mr1hm/go-quake-scene/internal/filter"
	"github.com/mr1hm/go-quake-scene/internal/worker"
)

// RebuildRequested asks the synchronizer to rebuild for a new range.
type RebuildRequested struct {
	Range filter.Range
}

// NewRebuildProcessor adapts the synchronizer to a worker.Queue consumer.
// publish, when set, receives every successful result.
func NewRebuildProcessor(s *Synchronizer, publish func(Result)) worker.ProcessFunc {
	return func(ctx context.Context, job worker.Job) error {
		req, ok := job.(RebuildRequested)
		if !ok {
			return fmt.Errorf("unexpected job type %T", job)
		}
		res, err := s.Rebuild(req.Range)
		if err != nil {
			return err
		}
		if publish != nil {
			publish(res)
		}
		return nil
	}
}
