package stream

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-quake-scene/internal/filter"
	"github.com/mr1hm/go-quake-scene/internal/scene"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func result(live int) scene.Result {
	return scene.Result{
		Range: filter.Range{Start: "2017-01-01", End: "2017-12-31"},
		Live:  live,
	}
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Unsubscribe(id)
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestBroadcaster_Broadcast(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	b.Broadcast(result(42))

	select {
	case received := <-ch:
		if received.Live != 42 {
			t.Errorf("expected live 42, got %d", received.Live)
		}
		if received.Range.Start != "2017-01-01" {
			t.Errorf("expected range start 2017-01-01, got %s", received.Range.Start)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast")
	}
}

func TestBroadcaster_ReplaysLatestToNewSubscriber(t *testing.T) {
	b := NewBroadcaster()

	if _, ok := b.Latest(); ok {
		t.Error("expected no latest result before first broadcast")
	}

	b.Broadcast(result(1))
	b.Broadcast(result(2))

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	select {
	case received := <-ch:
		if received.Live != 2 {
			t.Errorf("expected replayed live 2, got %d", received.Live)
		}
	default:
		t.Error("expected latest result to be replayed on subscribe")
	}

	latest, ok := b.Latest()
	if !ok || latest.Live != 2 {
		t.Errorf("expected latest live 2, got %d (ok=%v)", latest.Live, ok)
	}
}

func TestBroadcaster_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := b.Subscribe()
			time.Sleep(time.Millisecond)
			b.Unsubscribe(id)
		}()
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after cleanup, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_ConcurrentSubscribeBroadcast(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ch := b.Subscribe()
			drained := make(chan struct{})
			go func() {
				for range ch {
				}
				close(drained)
			}()
			time.Sleep(5 * time.Millisecond)
			b.Unsubscribe(id)
			<-drained
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Broadcast(result(n))
		}(i)
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()

	var channels []<-chan scene.Result
	for i := 0; i < 5; i++ {
		_, ch := b.Subscribe()
		channels = append(channels, ch)
	}

	if b.SubscriberCount() != 5 {
		t.Errorf("expected 5 subscribers, got %d", b.SubscriberCount())
	}

	b.Close()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", b.SubscriberCount())
	}

	for i, ch := range channels {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("channel %d should be closed", i)
			}
		default:
			t.Errorf("channel %d should be closed and readable", i)
		}
	}

	// Subscribing after close yields a closed channel and no registration.
	_, ch := b.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after Close")
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	// Broadcast after close is a no-op.
	b.Broadcast(result(1))
}

func TestBroadcaster_SlowSubscriber(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	for i := 0; i < subscriberBuffer+1; i++ {
		b.Broadcast(result(i))
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			goto done
		}
	}
done:

	if count != subscriberBuffer {
		t.Errorf("expected %d buffered results, got %d", subscriberBuffer, count)
	}
}
