package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwillem/roarm/pkg/protocol"
	"github.com/gwillem/roarm/pkg/robot"
)

const defaultSpeed = 0.25

// Engine speaks the arm protocol over a duplex byte stream.
type Engine struct {
	w   io.Writer
	wmu sync.Mutex // serializes writes and relative-move resolution

	store *robot.Store
	reasm *protocol.Reassembler
	corr  *correlator
	bcast *Broadcaster

	statusCodes map[int]struct{}
	policy      QueryPolicy
	optimistic  bool
	speed       float64
	limits      protocol.Limits

	log     zerolog.Logger
	metrics *Metrics
}

// New creates an engine writing to w. Inbound data must be supplied
// through Feed or Run.
func New(w io.Writer, opts ...Option) *Engine {
	e := &Engine{
		w:      w,
		store:  robot.NewStore(),
		bcast:  NewBroadcaster(),
		speed:  defaultSpeed,
		limits: protocol.DefaultLimits(),
		log:    zerolog.Nop(),
	}
	WithStatusCodes(protocol.DefaultStatusCodes()...)(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = mustNewMetrics()
	}

	e.corr = newCorrelator(e.policy)
	e.reasm = protocol.NewReassembler(e.limits)
	e.reasm.OnError = e.reassemblyError
	return e
}

// Move commands an absolute pose.
func (e *Engine) Move(ctx context.Context, x, y, z, t, spd float64) error {
	m := protocol.Move{X: x, Y: y, Z: z, T: t, Speed: spd}
	return e.sendMove(ctx, func(robot.Pose) protocol.Move { return m })
}

// MoveRelative moves by an offset from the last known pose, keeping the
// clamp angle.
func (e *Engine) MoveRelative(ctx context.Context, dx, dy, dz, spd float64) error {
	rel := protocol.MoveRelative{DX: dx, DY: dy, DZ: dz, Speed: spd}
	return e.sendMove(ctx, rel.Resolve)
}

// ClampRelative changes the clamp angle by amount from the last known pose.
func (e *Engine) ClampRelative(ctx context.Context, amount float64) error {
	rel := protocol.ClampRelative{Amount: amount, Speed: e.speed}
	return e.sendMove(ctx, rel.Resolve)
}

// OpenClamp opens the clamp.
func (e *Engine) OpenClamp(ctx context.Context) error {
	return e.Send(ctx, protocol.SetClamp{Open: true})
}

// CloseClamp closes the clamp.
func (e *Engine) CloseClamp(ctx context.Context) error {
	return e.Send(ctx, protocol.SetClamp{Open: false})
}

// Send encodes and writes cmd. It returns once the frame is written.
func (e *Engine) Send(ctx context.Context, cmd protocol.Command) error {
	data, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	e.wmu.Lock()
	defer e.wmu.Unlock()
	return e.writeLocked(ctx, cmd, data)
}

// sendMove resolves and writes a move while holding the write lock, so
// relative moves see the pose left by the previous optimistic echo.
func (e *Engine) sendMove(ctx context.Context, resolve func(robot.Pose) protocol.Move) error {
	e.wmu.Lock()
	defer e.wmu.Unlock()

	m := resolve(e.store.Pose())
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	if err := e.writeLocked(ctx, m, data); err != nil {
		return err
	}
	if e.optimistic {
		e.store.SetTarget(m.X, m.Y, m.Z, m.T)
	}
	return nil
}

func (e *Engine) writeLocked(ctx context.Context, cmd protocol.Command, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	label := commandLabel(cmd)
	e.log.Trace().Str("command", label).Bytes("frame", data).Msg("write")

	e.metrics.writes.WithLabelValues(label).Inc()
	if _, err := e.w.Write(data); err != nil {
		e.metrics.writeErrors.WithLabelValues(label).Inc()
		e.log.Error().Err(err).Str("command", label).Msg("write failed")
		return &WriteError{Command: label, Err: err}
	}
	return nil
}

// QueryStatus sends a status query and waits for the next status report,
// for at most timeout (no limit if timeout <= 0). The wait includes time
// spent queued behind another query.
func (e *Engine) QueryStatus(ctx context.Context, timeout time.Duration) (protocol.TelemetryFrame, error) {
	start := time.Now()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := e.corr.acquire(ctx); err != nil {
		if errors.Is(err, ErrQueryPending) {
			e.metrics.queries.WithLabelValues(resultRejected).Inc()
			return protocol.TelemetryFrame{}, err
		}
		return protocol.TelemetryFrame{}, e.queryFailed(err, timeout)
	}
	defer e.corr.release()

	// Register before writing so a fast reply cannot be missed.
	ch := e.corr.register()
	if err := e.Send(ctx, protocol.QueryStatus{}); err != nil {
		e.corr.deregister(ch)
		if ctx.Err() != nil {
			return protocol.TelemetryFrame{}, e.queryFailed(ctx.Err(), timeout)
		}
		e.metrics.queries.WithLabelValues(resultWriteError).Inc()
		return protocol.TelemetryFrame{}, err
	}

	select {
	case f := <-ch:
		return e.queryDone(f, start), nil
	case <-ctx.Done():
		e.corr.deregister(ch)
		// The reader may have resolved us before deregister.
		select {
		case f := <-ch:
			return e.queryDone(f, start), nil
		default:
		}
		return protocol.TelemetryFrame{}, e.queryFailed(ctx.Err(), timeout)
	}
}

func (e *Engine) queryDone(f protocol.TelemetryFrame, start time.Time) protocol.TelemetryFrame {
	e.metrics.queries.WithLabelValues(resultOK).Inc()
	e.metrics.queryDuration.Observe(time.Since(start).Seconds())
	return f
}

func (e *Engine) queryFailed(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		e.metrics.queries.WithLabelValues(resultTimeout).Inc()
		e.log.Warn().Dur("timeout", timeout).Msg("status query timed out")
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	e.metrics.queries.WithLabelValues(resultCanceled).Inc()
	return err
}

// Feed delivers a chunk of inbound bytes. Chunks may split or join frames
// arbitrarily. Feed must only be called from one goroutine.
func (e *Engine) Feed(chunk []byte) {
	for _, raw := range e.reasm.Feed(chunk) {
		e.handleFrame(raw)
	}
}

// Run reads from r and feeds the engine until ctx is done, r returns
// io.EOF, or a read fails. Readers should return periodically (for
// example with a read timeout) so cancellation is observed.
func (e *Engine) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := r.Read(buf)
		if n > 0 {
			e.Feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

func (e *Engine) handleFrame(raw []byte) {
	f, err := protocol.DecodeTelemetry(raw)
	if err != nil {
		e.metrics.frameErrors.WithLabelValues("decode").Inc()
		e.log.Warn().Err(err).Msg("dropped frame")
		return
	}

	if _, ok := e.statusCodes[f.Code]; !ok {
		e.metrics.frames.WithLabelValues("other").Inc()
		e.log.Debug().Int("code", f.Code).Bytes("frame", raw).Msg("non-status frame")
		e.bcast.Publish(f)
		return
	}

	e.metrics.frames.WithLabelValues("status").Inc()
	e.store.Apply(f.Update)
	if !e.corr.resolve(f) {
		e.log.Debug().Bytes("frame", raw).Msg("unsolicited status")
	}
	e.bcast.Publish(f)
}

func (e *Engine) reassemblyError(err error) {
	var perr *protocol.FrameParseError
	if errors.As(err, &perr) {
		e.metrics.frameErrors.WithLabelValues("parse").Inc()
		e.log.Warn().Err(perr.Err).Bytes("raw", perr.Raw).Msg("dropped frame")
		return
	}
	e.metrics.frameErrors.WithLabelValues("overflow").Inc()
	e.log.Warn().Err(err).Msg("dropped pending data")
}

// CurrentPose returns a copy of the last known pose.
func (e *Engine) CurrentPose() robot.Pose {
	return e.store.Pose()
}

// CurrentTorques returns a copy of the last known torques.
func (e *Engine) CurrentTorques() robot.Torques {
	return e.store.Torques()
}

// Snapshot returns pose, torques and the time of the last status report.
func (e *Engine) Snapshot() (robot.Pose, robot.Torques, time.Time) {
	return e.store.Snapshot()
}

// Subscribe returns a channel receiving every decoded frame and a func
// that ends the subscription.
func (e *Engine) Subscribe(buffer int) (<-chan protocol.TelemetryFrame, func()) {
	return e.bcast.Subscribe(buffer)
}

// Policy returns the engine's query policy.
func (e *Engine) Policy() QueryPolicy {
	return e.policy
}

func commandLabel(cmd protocol.Command) string {
	switch cmd.(type) {
	case protocol.QueryStatus:
		return "status"
	case protocol.Move:
		return "move"
	case protocol.SetClamp:
		return "clamp"
	default:
		return fmt.Sprintf("code_%d", cmd.Code())
	}
}
