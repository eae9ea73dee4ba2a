package event

import (
	"errors"
	"sync"
	"sync/atomic"
)

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 256

// ErrBusClosed is returned by Emit after Close.
var ErrBusClosed = errors.New("event bus closed")

// Notification is a named payload delivered by the Bus.
type Notification struct {
	Name    string
	Payload string
}

// Bus is an in-process broadcast Emitter. Every subscriber receives every
// notification. Publishing never blocks: a subscriber whose buffer is full
// misses the notification.
//
// Bus is safe for concurrent use.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Notification
	nextID      uint64
	dropped     atomic.Uint64
	closed      bool
}

// Compile-time verification that Bus implements Emitter.
var _ Emitter = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[uint64]chan Notification),
	}
}

// Subscribe registers a new listener. The returned cancel function must be
// called to release it; it closes the channel.
func (b *Bus) Subscribe() (notifications <-chan Notification, cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Notification)
		close(ch)

		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	ch := make(chan Notification, subscriberBuffer)
	b.subscribers[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if ch, ok := b.subscribers[id]; ok {
			close(ch)
			delete(b.subscribers, id)
		}
	}
}

// Emit broadcasts a notification to all current subscribers.
func (b *Bus) Emit(name, payload string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	n := Notification{Name: name, Payload: payload}

	for _, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			b.dropped.Add(1)
		}
	}

	return nil
}

// Dropped reports how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Further Emit calls fail.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
