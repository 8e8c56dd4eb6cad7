// Package relay pushes view updates to connected browsers.
package relay

import (
	"sync"
	"sync/atomic"
)

// Per-subscriber buffer. Updates arrive a few times an hour.
const subscriberBufSize = 16

// Event is one push message. Feed is the source name clients filter on.
type Event struct {
	Feed    string
	Payload string
}

type subscriber struct {
	ch    chan Event
	feeds map[string]bool
}

// Broker fans events out to subscribers. Delivery never blocks the
// publisher: a full subscriber misses the event.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]subscriber
	closed      bool
	nextID      atomic.Int64
	dropped     atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int64]subscriber)}
}

// Subscribe registers a client for the given feeds. A nil or empty set
// receives every feed. After Close the returned channel is already closed.
func (b *Broker) Subscribe(feeds map[string]bool) (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	if len(feeds) == 0 {
		feeds = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = subscriber{ch: ch, feeds: feeds}
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(s.ch)
	}
}

// Publish offers evt to every matching subscriber and returns how many took it.
func (b *Broker) Publish(evt Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, s := range b.subscribers {
		if s.feeds != nil && !s.feeds[evt.Feed] {
			continue
		}
		select {
		case s.ch <- evt:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Close disconnects every subscriber so streaming handlers return. Used on
// server shutdown.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subscribers {
		delete(b.subscribers, id)
		close(s.ch)
	}
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped is the number of deliveries skipped because a subscriber was full.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }
