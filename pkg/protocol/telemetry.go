package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/gwillem/roarm/pkg/robot"
)

var errMissingCode = errors.New(`missing "T" field`)

// TelemetryFrame is one decoded inbound frame. Pose and torque fields are
// only meaningful where Fields says they were present.
type TelemetryFrame struct {
	Code int
	robot.Update
}

type wireTelemetry struct {
	T    *float64 `json:"T"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Z    *float64 `json:"z"`
	Ang  *float64 `json:"t"`
	B    *float64 `json:"b"`
	S    *float64 `json:"s"`
	E    *float64 `json:"e"`
	TorB *float64 `json:"torB"`
	TorS *float64 `json:"torS"`
	TorE *float64 `json:"torE"`
	TorH *float64 `json:"torH"`
}

// DecodeTelemetry parses one frame. Unknown fields are ignored. Errors are
// *FrameParseError.
func DecodeTelemetry(raw []byte) (TelemetryFrame, error) {
	var w wireTelemetry
	if err := json.Unmarshal(raw, &w); err != nil {
		return TelemetryFrame{}, &FrameParseError{Raw: raw, Err: err}
	}
	if w.T == nil {
		return TelemetryFrame{}, &FrameParseError{Raw: raw, Err: errMissingCode}
	}

	// Codes may be written as 1051 or 1051.0
	code := *w.T
	if code != math.Trunc(code) || math.Abs(code) > math.MaxInt32 {
		return TelemetryFrame{}, &FrameParseError{Raw: raw, Err: fmt.Errorf(`invalid "T" value %v`, code)}
	}

	f := TelemetryFrame{Code: int(code)}
	set := func(dst *float64, src *float64, field robot.FieldSet) {
		if src != nil {
			*dst = *src
			f.Fields |= field
		}
	}
	set(&f.Pose.X, w.X, robot.FieldX)
	set(&f.Pose.Y, w.Y, robot.FieldY)
	set(&f.Pose.Z, w.Z, robot.FieldZ)
	set(&f.Pose.T, w.Ang, robot.FieldT)
	set(&f.Pose.B, w.B, robot.FieldB)
	set(&f.Pose.S, w.S, robot.FieldS)
	set(&f.Pose.E, w.E, robot.FieldE)
	set(&f.Torques.Base, w.TorB, robot.FieldTorB)
	set(&f.Torques.Shoulder, w.TorS, robot.FieldTorS)
	set(&f.Torques.Elbow, w.TorE, robot.FieldTorE)
	set(&f.Torques.Hand, w.TorH, robot.FieldTorH)
	return f, nil
}
