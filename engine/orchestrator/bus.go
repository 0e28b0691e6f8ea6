package orchestrator

import (
	"sync"

	"github.com/Carmen-Shannon/tessera-go/common"
)

// busSub is one subscriber's mailbox: a single payload slot with overwrite
// semantics. A forwarder goroutine drains the slot into the subscriber's
// channel, so a slow subscriber only ever delays itself and always receives
// the newest payload when it catches up.
type busSub struct {
	name string
	out  chan<- Payload
	quit chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	pending *Payload
	closed  bool
	drops   uint64
}

func (s *busSub) forward() {
	for {
		s.mu.Lock()
		for s.pending == nil && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		p := *s.pending
		s.pending = nil
		s.mu.Unlock()

		select {
		case s.out <- p:
		case <-s.quit:
			return
		}
	}
}

// Bus distributes payloads to subscribers with latest-value semantics:
// publishing never blocks and never queues. Each subscriber owns a
// single-slot mailbox; an unconsumed payload is overwritten by the next one
// and counted as a drop.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]*busSub
	nextID int
}

// NewBus creates an empty bus.
//
// Returns:
//   - *Bus: the bus
func NewBus() *Bus {
	return &Bus{subs: map[int]*busSub{}}
}

// Subscribe registers a channel to receive payloads. The bus sends on ch
// from a dedicated goroutine; the caller owns the channel and should not
// close it before unsubscribing.
//
// Parameters:
//   - name: a label for diagnostics
//   - ch: the channel payloads are delivered on
//
// Returns:
//   - func(): unsubscribe function, idempotent; tears the subscription down,
//     at most one already in-flight delivery may still complete
func (b *Bus) Subscribe(name string, ch chan<- Payload) func() {
	sub := &busSub{
		name: name,
		out:  ch,
		quit: make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go sub.forward()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()

			sub.mu.Lock()
			sub.closed = true
			sub.cond.Signal()
			sub.mu.Unlock()
			close(sub.quit)
		})
	}
}

// Publish hands a payload to every subscriber's mailbox, overwriting any
// unconsumed previous payload. Never blocks.
//
// Parameters:
//   - p: the payload to distribute
func (b *Bus) Publish(p Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		sub.mu.Lock()
		if !sub.closed {
			if sub.pending != nil {
				sub.drops++
				if sub.drops == 1 || sub.drops%64 == 0 {
					common.Logger().Debug("bus subscriber lagging, conflating", "subscriber", sub.name, "drops", sub.drops)
				}
			}
			cp := p
			sub.pending = &cp
			sub.cond.Signal()
		}
		sub.mu.Unlock()
	}
}

// SubscriberCount returns the number of active subscriptions.
//
// Returns:
//   - int: the subscriber count
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
