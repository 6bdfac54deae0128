// Package link drives the arm over a byte-stream duplex.
//
// An Engine owns the write side of the stream and exposes the command API.
// The read side is pushed in by a single goroutine, either through Feed or
// through Run, and is the only writer of the arm state.
//
// # Commands
//
// Move, MoveRelative, OpenClamp, CloseClamp and ClampRelative are send and
// forget: they return once the frame has been written, not once the arm has
// moved. Writes are serialized so frames never interleave on the wire.
//
// # Status queries
//
// QueryStatus sends a status query and waits for the next status report.
// Only one query is outstanding at a time. With SerializeQueries (the
// default) concurrent callers queue; with RejectConcurrentQueries they fail
// with ErrQueryPending. A timeout only abandons the local waiter, so a reply
// that arrives late is handled as unsolicited telemetry.
//
// # Observers
//
// Subscribe delivers every decoded frame, status or not, without blocking
// the reader. Slow subscribers lose the oldest frames first.
//
// Example:
//
//	eng := link.New(port, link.WithLogger(logger))
//	go eng.Run(ctx, port)
//
//	status, err := eng.QueryStatus(ctx, 5*time.Second)
//	if err != nil {
//		return err
//	}
//	err = eng.MoveRelative(ctx, 0, 2, 0, 0.25)
package link
