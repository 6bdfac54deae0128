package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Limits constrains reassembly memory use.
type Limits struct {
	// MaxPending is the largest number of unframed bytes kept while waiting
	// for a closing brace. Zero disables the bound.
	MaxPending int
}

func DefaultLimits() Limits {
	return Limits{
		MaxPending: 64 * 1024,
	}
}

// Reassembler splits an inbound byte stream into frames. A frame is every
// byte from the start of the buffer through the first '}' inclusive, so
// frames containing nested objects are split early. The firmware never
// sends nested objects.
//
// A Reassembler is not safe for concurrent use.
type Reassembler struct {
	buf     []byte
	off     int // start of unread data in buf
	scanned int // bytes past off known to contain no '}'
	limits  Limits

	// discarding is set while skipping the rest of an oversize frame.
	discarding bool

	// OnError, if set, receives a *FrameParseError for each dropped
	// candidate and ErrFrameTooLarge for each oversize frame.
	OnError func(error)
}

// NewReassembler returns an empty reassembler bounded by limits.
func NewReassembler(limits Limits) *Reassembler {
	return &Reassembler{limits: limits}
}

// Write appends p to the pending buffer. It never fails.
func (r *Reassembler) Write(p []byte) (int, error) {
	r.buf = append(r.buf, p...)
	return len(p), nil
}

// Buffered returns the number of bytes not yet framed.
func (r *Reassembler) Buffered() int {
	return len(r.buf) - r.off
}

// Next pops the next candidate frame. The returned slice is owned by the
// caller. Candidates are not validated; use Feed for that.
//
// A candidate longer than MaxPending is dropped and reported once, whether
// it arrived whole or its unframed prefix outgrew the bound first.
func (r *Reassembler) Next() ([]byte, bool) {
	for {
		pending := r.buf[r.off:]
		i := bytes.IndexByte(pending[r.scanned:], '}')
		if i < 0 {
			r.scanned = len(pending)
			switch {
			case r.discarding:
				r.drop(len(pending))
			case r.oversize(len(pending)):
				r.discarding = true
				r.drop(len(pending))
				r.reportOversize()
			}
			return nil, false
		}

		end := r.scanned + i + 1
		if r.discarding {
			// Tail of a frame already reported as too large
			r.discarding = false
			r.drop(end)
			continue
		}
		if r.oversize(end) {
			r.drop(end)
			r.reportOversize()
			continue
		}

		frame := make([]byte, end)
		copy(frame, r.buf[r.off:r.off+end])
		r.drop(end)
		return frame, true
	}
}

// Feed appends p and returns every complete frame that is valid JSON.
// Invalid candidates are dropped and reported through OnError; extraction
// continues with the rest of the buffer.
func (r *Reassembler) Feed(p []byte) [][]byte {
	r.Write(p)

	var frames [][]byte
	for {
		raw, ok := r.Next()
		if !ok {
			return frames
		}
		var v json.RawMessage
		if err := json.Unmarshal(raw, &v); err != nil {
			r.report(&FrameParseError{Raw: raw, Err: err})
			continue
		}
		frames = append(frames, raw)
	}
}

// Reset discards all pending data.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
	r.off = 0
	r.scanned = 0
	r.discarding = false
}

// drop consumes n bytes of pending data.
func (r *Reassembler) drop(n int) {
	r.off += n
	r.scanned = 0
	r.compact()
}

func (r *Reassembler) oversize(n int) bool {
	return r.limits.MaxPending > 0 && n > r.limits.MaxPending
}

func (r *Reassembler) reportOversize() {
	r.report(fmt.Errorf("%w: frame exceeds %d bytes", ErrFrameTooLarge, r.limits.MaxPending))
}

// compact moves unread bytes to the front once at least half the slice
// has been consumed.
func (r *Reassembler) compact() {
	if r.off == len(r.buf) {
		r.buf = r.buf[:0]
		r.off = 0
		return
	}
	if r.off < len(r.buf)/2 {
		return
	}
	n := copy(r.buf, r.buf[r.off:])
	r.buf = r.buf[:n]
	r.off = 0
}

func (r *Reassembler) report(err error) {
	if r.OnError != nil {
		r.OnError(err)
	}
}
