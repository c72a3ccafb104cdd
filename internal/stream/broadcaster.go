package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-quake-scene/internal/scene"
)

const subscriberBuffer = 8

// Broadcaster fans rebuild results out to scene stream subscribers. The most
// recent result is replayed to each new subscriber so a client that connects
// between rebuilds still learns the current scene.
type Broadcaster struct {
	subscribers map[uint64]chan scene.Result
	nextID      atomic.Uint64
	mu          sync.RWMutex

	latest    scene.Result
	hasLatest bool
	closed    bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan scene.Result),
	}
}

// Subscribe registers a new subscriber. On a closed broadcaster the returned
// channel is already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan scene.Result) {
	id := b.nextID.Add(1)
	ch := make(chan scene.Result, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return id, ch
	}
	if b.hasLatest {
		ch <- b.latest
	}
	b.subscribers[id] = ch
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(res scene.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest = res
	b.hasLatest = true

	for _, ch := range b.subscribers {
		select {
		case ch <- res:
		default:
			// slow subscriber
		}
	}
}

// Latest returns the last broadcast result, if any.
func (b *Broadcaster) Latest() (scene.Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.hasLatest
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels so open streams return.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
