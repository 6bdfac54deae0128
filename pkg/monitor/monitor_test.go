package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/roarm/pkg/protocol"
	"github.com/gwillem/roarm/pkg/robot"
)

type fakeLink struct {
	mu    sync.Mutex
	err   error
	calls int
	pose  robot.Pose
}

func (f *fakeLink) QueryStatus(ctx context.Context, timeout time.Duration) (protocol.TelemetryFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return protocol.TelemetryFrame{}, f.err
	}
	f.pose.X = float64(f.calls)
	return protocol.TelemetryFrame{Code: protocol.CodeStatus}, nil
}

func (f *fakeLink) Snapshot() (robot.Pose, robot.Torques, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pose, robot.Torques{Hand: 4}, time.Time{}
}

func TestController_StepPublishesSnapshot(t *testing.T) {
	link := &fakeLink{}
	c := NewController(link, Config{Hz: 10})

	c.Step(context.Background())

	s := <-c.States()
	require.NoError(t, s.Error)
	assert.Equal(t, 1.0, s.Pose.X)
	assert.Equal(t, 4.0, s.Torques.Hand)
	assert.False(t, s.Timestamp.IsZero())
}

func TestController_StepError(t *testing.T) {
	link := &fakeLink{err: errors.New("status query timed out")}
	c := NewController(link, Config{})

	c.Step(context.Background())

	s := <-c.States()
	assert.EqualError(t, s.Error, "status query timed out")
	assert.Contains(t, <-c.Logs(), "Status error")
}

func TestController_KeepsLatestState(t *testing.T) {
	c := NewController(&fakeLink{}, Config{})

	for i := 0; i < 3; i++ {
		c.Step(context.Background())
	}

	s := <-c.States()
	assert.Equal(t, 3.0, s.Pose.X)
}

func TestController_Defaults(t *testing.T) {
	c := NewController(&fakeLink{}, Config{Hz: 4})

	assert.Equal(t, 4, c.Hz())
	assert.Equal(t, 250*time.Millisecond, c.timeout)
}

func TestController_StartStop(t *testing.T) {
	link := &fakeLink{}
	c := NewController(link, Config{Hz: 50})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	// Wait for at least two polls.
	<-c.States()
	<-c.States()

	assert.EqualError(t, c.Start(ctx), "already running")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestController_LogsDropWhenFull(t *testing.T) {
	c := NewController(&fakeLink{}, Config{})

	for i := 0; i < 20; i++ {
		c.Logf("line %d", i)
	}
	assert.Len(t, c.Logs(), cap(c.logCh))
}

func TestController_LogWriter(t *testing.T) {
	c := NewController(&fakeLink{}, Config{})
	w := c.LogWriter()

	fmt.Fprint(w, "first line\r\nsecond ")
	fmt.Fprint(w, "line\n\n")

	assert.Equal(t, "first line", <-c.Logs())
	assert.Equal(t, "second line", <-c.Logs())
	assert.Len(t, c.Logs(), 0)
}
