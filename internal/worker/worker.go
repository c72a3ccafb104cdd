package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
)

type Job interface{}

type ProcessFunc func(ctx context.Context, job Job) error

// Queue hands jobs to a single consumer goroutine, so at most one job is
// ever being processed. Submissions beyond the buffer are refused rather
// than blocking the caller.
type Queue struct {
	jobs      chan Job
	processor ProcessFunc
	wg        sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewQueue(bufferSize int, processor ProcessFunc) *Queue {
	return &Queue{
		jobs:      make(chan Job, bufferSize),
		processor: processor,
	}
}

func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go q.consume(ctx)
}

func (q *Queue) consume(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			if err := q.processor(ctx, job); err != nil {
				slog.Error("job failed", "error", err)
			}
		}
	}
}

// TrySubmit enqueues job without blocking.
func (q *Queue) TrySubmit(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued jobs not yet picked up.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Stop refuses new jobs, lets the consumer drain what is queued (unless its
// context is already done) and waits for it to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
