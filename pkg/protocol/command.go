package protocol

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/gwillem/roarm/pkg/robot"
)

// Command is an outbound message that has a wire encoding.
type Command interface {
	// Code returns the "T" discriminator.
	Code() int
	payload() (any, error)
}

// QueryStatus asks the arm for a status report.
type QueryStatus struct{}

// Move is an absolute position command. The firmware performs the motion.
type Move struct {
	X, Y, Z float64
	T       float64 // clamp/tool angle
	Speed   float64
}

// SetClamp opens or closes the clamp.
type SetClamp struct {
	Open bool
}

func (QueryStatus) Code() int { return CodeQueryStatus }
func (Move) Code() int        { return CodeMove }
func (SetClamp) Code() int    { return CodeSetClamp }

func (QueryStatus) payload() (any, error) {
	return struct {
		T int `json:"T"`
	}{CodeQueryStatus}, nil
}

func (m Move) payload() (any, error) {
	for _, v := range [...]float64{m.X, m.Y, m.Z, m.T, m.Speed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
	}
	return struct {
		T   int     `json:"T"`
		X   float64 `json:"x"`
		Y   float64 `json:"y"`
		Z   float64 `json:"z"`
		Ang float64 `json:"t"`
		Spd float64 `json:"spd"`
	}{CodeMove, m.X, m.Y, m.Z, m.T, m.Speed}, nil
}

func (c SetClamp) payload() (any, error) {
	v := 0
	if c.Open {
		v = 1
	}
	return struct {
		T int `json:"T"`
		V int `json:"V"`
	}{CodeSetClamp, v}, nil
}

// Encode returns the single-line JSON frame for cmd. Values are not range
// checked.
func Encode(cmd Command) ([]byte, error) {
	p, err := cmd.payload()
	if err != nil {
		return nil, fmt.Errorf("encode %d: %w", cmd.Code(), err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %d: %w", cmd.Code(), err)
	}
	return data, nil
}

// MoveRelative is a move expressed as an offset from the current pose.
// It has no wire form and must be resolved first.
type MoveRelative struct {
	DX, DY, DZ float64
	Speed      float64
}

// Resolve returns the absolute move from p. The clamp angle is kept.
func (m MoveRelative) Resolve(p robot.Pose) Move {
	return Move{
		X:     p.X + m.DX,
		Y:     p.Y + m.DY,
		Z:     p.Z + m.DZ,
		T:     p.T,
		Speed: m.Speed,
	}
}

// ClampRelative changes the clamp angle by Amount from the current pose.
type ClampRelative struct {
	Amount float64
	Speed  float64
}

// Resolve returns the absolute move from p with only the clamp angle changed.
func (c ClampRelative) Resolve(p robot.Pose) Move {
	return Move{
		X:     p.X,
		Y:     p.Y,
		Z:     p.Z,
		T:     p.T + c.Amount,
		Speed: c.Speed,
	}
}
