package robot

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a target falls outside the workspace.
var ErrOutOfRange = errors.New("target out of range")

// Range is the allowed interval of one axis. The zero Range is unbounded.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains reports whether v lies within the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if r.IsZero() {
		return !math.IsInf(v, 0)
	}
	return v >= r.Min && v <= r.Max
}

// Normalize maps v onto [-100, 100] relative to the range.
func (r Range) Normalize(v float64) float64 {
	size := r.Max - r.Min
	if size == 0 {
		return 0
	}
	return (v-r.Min)/size*200 - 100
}

// Workspace holds per-axis limits, keyed by axis.
type Workspace map[Axis]Range

// DefaultWorkspace returns limits that fit the arm's reach envelope.
func DefaultWorkspace() Workspace {
	return Workspace{
		AxisX: {Min: -500, Max: 500},
		AxisY: {Min: -500, Max: 500},
		AxisZ: {Min: -250, Max: 500},
		AxisT: {Min: 0, Max: 3.2},
	}
}

// Check returns an error wrapping ErrOutOfRange for the first commandable
// axis of p that lies outside its limits. Axes without limits accept any
// finite value.
func (w Workspace) Check(p Pose) error {
	for _, axis := range AllAxes() {
		v := p.Axis(axis)
		r := w[axis]
		if !r.Contains(v) {
			if r.IsZero() {
				return fmt.Errorf("%w: %s=%v", ErrOutOfRange, axis, v)
			}
			return fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfRange, axis, v, r.Min, r.Max)
		}
	}
	return nil
}

// Normalize maps each commandable axis of p onto [-100, 100]. Axes without
// limits are omitted.
func (w Workspace) Normalize(p Pose) map[Axis]float64 {
	out := make(map[Axis]float64, len(w))
	for _, axis := range AllAxes() {
		r, ok := w[axis]
		if !ok || r.IsZero() {
			continue
		}
		out[axis] = r.Normalize(p.Axis(axis))
	}
	return out
}
