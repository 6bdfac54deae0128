package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameTooLarge is reported when unframed input grows past Limits.MaxPending.
	ErrFrameTooLarge = errors.New("protocol: pending frame exceeds limit")
	// ErrNonFinite is returned when a command carries NaN or Inf, which JSON cannot encode.
	ErrNonFinite = errors.New("protocol: non-finite number in command")
)

// FrameParseError reports a candidate frame that could not be parsed.
type FrameParseError struct {
	Raw []byte
	Err error
}

func (e *FrameParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol: invalid frame %q", e.Raw)
	}
	return fmt.Sprintf("protocol: invalid frame %q: %v", e.Raw, e.Err)
}

func (e *FrameParseError) Unwrap() error {
	return e.Err
}
