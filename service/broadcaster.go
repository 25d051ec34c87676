package service

import (
	"sync"

	"github.com/ludo-technologies/jsboard/domain"
)

// Broadcaster fans snapshots out to subscribers. Each subscriber holds at
// most one undelivered snapshot: a slow reader skips intermediate ones and
// always ends up with the latest.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan *domain.Snapshot
	next   uint64
	latest *domain.Snapshot
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]chan *domain.Snapshot)}
}

// Subscribe returns a channel of snapshots and a cancel function. The
// current snapshot, if any, is delivered first. The channel is closed by
// cancel.
func (b *Broadcaster) Subscribe() (<-chan *domain.Snapshot, func()) {
	ch := make(chan *domain.Snapshot, 1)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	if b.latest != nil {
		ch <- b.latest
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers s to every subscriber, replacing any snapshot still
// waiting in a subscriber's buffer. It never blocks.
func (b *Broadcaster) Publish(s *domain.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = s
	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Subscribers returns the number of active subscriptions
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
