// Package monitor polls the arm for status at a fixed rate.
package monitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gwillem/roarm/pkg/protocol"
	"github.com/gwillem/roarm/pkg/robot"
)

// Link is the part of link.Engine the monitor needs.
type Link interface {
	QueryStatus(ctx context.Context, timeout time.Duration) (protocol.TelemetryFrame, error)
	Snapshot() (robot.Pose, robot.Torques, time.Time)
}

// State represents the arm state after one poll.
type State struct {
	Pose      robot.Pose
	Torques   robot.Torques
	Timestamp time.Time
	Error     error
}

// Controller manages the polling loop.
type Controller struct {
	link    Link
	hz      int
	timeout time.Duration

	mu      sync.RWMutex
	running bool
	stateCh chan State
	logCh   chan string
	now     func() time.Time
}

// Config holds configuration for the controller.
type Config struct {
	Hz      int           // polls per second, default 2
	Timeout time.Duration // per-query timeout, default one poll period
}

// NewController creates a new polling controller.
func NewController(link Link, cfg Config) *Controller {
	if cfg.Hz <= 0 {
		cfg.Hz = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second / time.Duration(cfg.Hz)
	}

	return &Controller{
		link:    link,
		hz:      cfg.Hz,
		timeout: cfg.Timeout,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
		now:     time.Now,
	}
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the polling frequency.
func (c *Controller) Hz() int {
	return c.hz
}

// Logf queues a timestamped log line. Lines are dropped when the channel
// is full.
func (c *Controller) Logf(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), fmt.Sprintf(format, args...))
	c.pushLog(msg)
}

func (c *Controller) pushLog(msg string) {
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// LogWriter returns a writer that turns each written line into a log
// message, so a logger can print into the Logs channel.
func (c *Controller) LogWriter() io.Writer {
	return &lineWriter{push: c.pushLog}
}

// Start runs the polling loop until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.Logf("Polling status at %d Hz", c.hz)

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	c.Step(ctx)
	for {
		select {
		case <-ctx.Done():
			c.Logf("Polling stopped")
			return ctx.Err()
		case <-ticker.C:
			c.Step(ctx)
		}
	}
}

// Step runs one poll and publishes the result.
func (c *Controller) Step(ctx context.Context) {
	if _, err := c.link.QueryStatus(ctx, c.timeout); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.Logf("Status error: %v", err)
		c.sendState(State{Error: err, Timestamp: c.now()})
		return
	}

	pose, torques, _ := c.link.Snapshot()
	c.sendState(State{
		Pose:      pose,
		Torques:   torques,
		Timestamp: c.now(),
	})
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		select {
		case c.stateCh <- s:
		default:
		}
	}
}

// lineWriter splits writes into lines. Partial lines wait for the next write.
type lineWriter struct {
	mu   sync.Mutex
	buf  []byte
	push func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(bytes.TrimRight(w.buf[:i], "\r"))
		w.buf = w.buf[i+1:]
		if line != "" {
			w.push(line)
		}
	}
}
