// Package robot models the arm's state and the configuration used to reach it.
package robot

// Joint identifies a torque-reporting joint of the arm.
type Joint string

// Joints reported in telemetry torque fields.
const (
	Base     Joint = "base"
	Shoulder Joint = "shoulder"
	Elbow    Joint = "elbow"
	Hand     Joint = "hand"
)

// AllJoints returns all joints in wire order (torB, torS, torE, torH).
func AllJoints() []Joint {
	return []Joint{
		Base,
		Shoulder,
		Elbow,
		Hand,
	}
}

// Axis identifies a commandable pose coordinate.
type Axis string

// Axes accepted by the absolute move command.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
	AxisT Axis = "t" // clamp/tool angle
)

// AllAxes returns the commandable axes in wire order.
func AllAxes() []Axis {
	return []Axis{AxisX, AxisY, AxisZ, AxisT}
}
