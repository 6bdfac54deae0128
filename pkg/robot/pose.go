package robot

// Pose is the arm's positional and angular state.
type Pose struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	T float64 `json:"t"` // clamp/tool angle
	B float64 `json:"b"`
	S float64 `json:"s"`
	E float64 `json:"e"`
}

// Axis returns the value of a commandable axis.
func (p Pose) Axis(a Axis) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	case AxisZ:
		return p.Z
	case AxisT:
		return p.T
	}
	return 0
}

// Torques holds the last reported joint torques.
type Torques struct {
	Base     float64 `json:"torB"`
	Shoulder float64 `json:"torS"`
	Elbow    float64 `json:"torE"`
	Hand     float64 `json:"torH"`
}

// ByJoint returns the torques keyed by joint.
func (t Torques) ByJoint() map[Joint]float64 {
	return map[Joint]float64{
		Base:     t.Base,
		Shoulder: t.Shoulder,
		Elbow:    t.Elbow,
		Hand:     t.Hand,
	}
}

// FieldSet records which telemetry fields were present in a frame.
type FieldSet uint16

const (
	FieldX FieldSet = 1 << iota
	FieldY
	FieldZ
	FieldT
	FieldB
	FieldS
	FieldE
	FieldTorB
	FieldTorS
	FieldTorE
	FieldTorH
)

const (
	PoseFields   = FieldX | FieldY | FieldZ | FieldT | FieldB | FieldS | FieldE
	TorqueFields = FieldTorB | FieldTorS | FieldTorE | FieldTorH
	AllFields    = PoseFields | TorqueFields
)

// Has reports whether every field in f is set.
func (s FieldSet) Has(f FieldSet) bool {
	return s&f == f
}

// Update is a partial state change. Only fields named in Fields are applied.
type Update struct {
	Pose    Pose
	Torques Torques
	Fields  FieldSet
}
