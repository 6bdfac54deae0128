package link

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gwillem/roarm/pkg/protocol"
)

func frameWithCode(code int) protocol.TelemetryFrame {
	return protocol.TelemetryFrame{Code: code}
}

func TestBroadcaster_DropOldest(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(2)
	defer cancel()

	for code := 1; code <= 5; code++ {
		b.Publish(frameWithCode(code))
	}

	assert.Equal(t, 4, (<-ch).Code)
	assert.Equal(t, 5, (<-ch).Code)
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster()
	a, cancelA := b.Subscribe(1)
	c, cancelC := b.Subscribe(1)
	defer cancelA()
	defer cancelC()

	b.Publish(frameWithCode(1051))

	assert.Equal(t, 1051, (<-a).Code)
	assert.Equal(t, 1051, (<-c).Code)
}

func TestBroadcaster_Cancel(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(0)
	other, cancelOther := b.Subscribe(1)
	defer cancelOther()

	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok, "channel must be closed")

	// Remaining subscribers still receive frames.
	b.Publish(frameWithCode(1))
	assert.Equal(t, 1, (<-other).Code)
}
