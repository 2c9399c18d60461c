package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is used when Subscribe is called with a non-positive buffer.
const DefaultBuffer = 8

// Bus fans out published values to all current subscribers.
type Bus[T any] struct {
	// mu guards subs and closed. Publish holds it for reading while sending,
	// which is safe because sends never block.
	mu     sync.RWMutex
	subs   map[uint64]*Subscription[T]
	seq    uint64
	closed bool

	// dropped counts deliveries skipped because a subscriber buffer was full.
	dropped atomic.Uint64
}

// Subscription is a single consumer of a Bus.
type Subscription[T any] struct {
	bus  *Bus[T]
	id   uint64
	ch   chan T
	once sync.Once
}

// New returns an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		subs: make(map[uint64]*Subscription[T]),
	}
}

// Publish delivers v to every subscriber with room in its buffer and returns
// the number of subscribers that received it.
func (b *Bus[T]) Publish(v T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	delivered := 0

	for _, sub := range b.subs {
		select {
		case sub.ch <- v:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}

	return delivered
}

// Subscribe registers a new subscriber. Subscribing to a closed bus returns a
// subscription whose channel is already closed.
func (b *Bus[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	sub := &Subscription[T]{
		bus: b,
		ch:  make(chan T, buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.once.Do(func() { close(sub.ch) })

		return sub
	}

	b.seq++
	sub.id = b.seq
	b.subs[sub.id] = sub

	return sub
}

// Close closes every subscriber channel. Later publishes are ignored.
// Close is idempotent.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Dropped returns how many deliveries were skipped due to full buffers.
func (b *Bus[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// C returns the channel values are delivered on. It is closed when the
// subscription or the bus is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close unsubscribes and closes the channel. It is safe to call more than once
// and after the bus itself was closed.
func (s *Subscription[T]) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	delete(s.bus.subs, s.id)
	s.once.Do(func() { close(s.ch) })
}
