package link

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when no status report arrives before the
	// query deadline. It is joined with context.DeadlineExceeded.
	ErrTimeout = errors.New("link: status query timed out")
	// ErrQueryPending is returned under RejectConcurrentQueries when a
	// status query is already outstanding.
	ErrQueryPending = errors.New("link: status query already pending")
)

// WriteError reports a failed write to the underlying stream.
type WriteError struct {
	Command string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("link: write %s: %v", e.Command, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
