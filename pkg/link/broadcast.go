package link

import (
	"sync"

	"github.com/gwillem/roarm/pkg/protocol"
)

// Broadcaster fans frames out to subscribers without blocking the publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan protocol.TelemetryFrame
	next int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan protocol.TelemetryFrame),
	}
}

// Subscribe returns a channel of frames and a cancel func that closes it.
// buffer below 1 is treated as 1.
func (b *Broadcaster) Subscribe(buffer int) (<-chan protocol.TelemetryFrame, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan protocol.TelemetryFrame, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers f to every subscriber. A full subscriber loses its
// oldest frame.
func (b *Broadcaster) Publish(f protocol.TelemetryFrame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- f:
		default:
			// Drop oldest, replace with new
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- f:
			default:
			}
		}
	}
}
