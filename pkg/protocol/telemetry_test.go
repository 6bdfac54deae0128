package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/roarm/pkg/robot"
)

func TestDecodeTelemetry_Full(t *testing.T) {
	raw := `{"T":1001,"x":235,"y":0,"z":234,"t":3.14,"b":0,"s":0,"e":0,"torB":1,"torS":2,"torE":3,"torH":4}`

	f, err := DecodeTelemetry([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 1001, f.Code)
	assert.Equal(t, robot.AllFields, f.Fields)
	assert.Equal(t, robot.Pose{X: 235, Y: 0, Z: 234, T: 3.14}, f.Pose)
	assert.Equal(t, robot.Torques{Base: 1, Shoulder: 2, Elbow: 3, Hand: 4}, f.Torques)
}

func TestDecodeTelemetry_Partial(t *testing.T) {
	f, err := DecodeTelemetry([]byte(`{"T":104,"x":1,"extra":"ignored"}`))
	require.NoError(t, err)

	assert.Equal(t, 104, f.Code)
	assert.Equal(t, robot.FieldX, f.Fields)
	assert.Equal(t, 1.0, f.Pose.X)
}

func TestDecodeTelemetry_FloatCode(t *testing.T) {
	f, err := DecodeTelemetry([]byte(`{"T":1051.0,"x":2}`))
	require.NoError(t, err)

	assert.Equal(t, CodeStatus, f.Code)
	assert.Equal(t, 2.0, f.Pose.X)

	f, err = DecodeTelemetry([]byte(`{"T":1.051e3}`))
	require.NoError(t, err)
	assert.Equal(t, CodeStatus, f.Code)
}

func TestDecodeTelemetry_Errors(t *testing.T) {
	for _, raw := range []string{
		`{"x":1}`,
		`{"T":"status"}`,
		`{"T":1051,"x":"far"}`,
		`{"T":105,}`,
		`{"T":1051.5}`,
	} {
		_, err := DecodeTelemetry([]byte(raw))
		var perr *FrameParseError
		require.True(t, errors.As(err, &perr), raw)
		assert.Equal(t, raw, string(perr.Raw))
	}
}
