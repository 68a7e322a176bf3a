// Package stream fans newly ingested records out to live subscribers.
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/filter"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

const subscriberBuffer = 100

type subscriber struct {
	ch     chan models.Record
	filter filter.FilterSet
}

type Broadcaster struct {
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64
	dropped     atomic.Uint64
	mu          sync.RWMutex
	closed      bool

	// now is swapped in tests
	now func() time.Time
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]*subscriber),
		now:         time.Now,
	}
}

// Subscribe registers a listener that only receives records matching f.
// The channel is closed on Unsubscribe or Close.
func (b *Broadcaster) Subscribe(f filter.FilterSet) (uint64, <-chan models.Record) {
	id := b.nextID.Add(1)
	ch := make(chan models.Record, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = &subscriber{ch: ch, filter: f}
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(r models.Record) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.now()
	for _, sub := range b.subscribers {
		if !sub.filter.Match(&r, now) {
			continue
		}
		select {
		case sub.ch <- r:
		default:
			// Skip slow subscribers
			b.dropped.Add(1)
		}
	}
}

// Close unsubscribes everyone; later subscriptions get a closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	b.closed = true
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}
