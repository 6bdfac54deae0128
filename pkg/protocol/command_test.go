package protocol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/roarm/pkg/robot"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"status", QueryStatus{}, `{"T":105}`},
		{"move", Move{X: 235, Y: 0, Z: 234, T: 3.14, Speed: 0.25}, `{"T":104,"x":235,"y":0,"z":234,"t":3.14,"spd":0.25}`},
		{"move negative", Move{X: -1.5, Y: 2, Z: -3, T: 0, Speed: 1}, `{"T":104,"x":-1.5,"y":2,"z":-3,"t":0,"spd":1}`},
		{"clamp open", SetClamp{Open: true}, `{"T":106,"V":1}`},
		{"clamp close", SetClamp{Open: false}, `{"T":106,"V":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncode_NoClamping(t *testing.T) {
	got, err := Encode(Move{X: 1e6, Speed: -5})
	require.NoError(t, err)
	assert.Equal(t, `{"T":104,"x":1000000,"y":0,"z":0,"t":0,"spd":-5}`, string(got))
}

func TestEncode_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Encode(Move{Y: v})
		assert.ErrorIs(t, err, ErrNonFinite)
	}
}

func TestEncode_Codes(t *testing.T) {
	assert.Equal(t, 105, QueryStatus{}.Code())
	assert.Equal(t, 104, Move{}.Code())
	assert.Equal(t, 106, SetClamp{}.Code())
}

func TestMoveRelative_Resolve(t *testing.T) {
	p := robot.Pose{X: 10, Y: 20, Z: 30, T: 1.5, B: 9}
	got := MoveRelative{DX: 2, DY: -2, DZ: 0.5, Speed: 0.25}.Resolve(p)

	assert.Equal(t, Move{X: 12, Y: 18, Z: 30.5, T: 1.5, Speed: 0.25}, got)
}

func TestClampRelative_Resolve(t *testing.T) {
	p := robot.Pose{X: 10, Y: 20, Z: 30, T: 1}
	got := ClampRelative{Amount: -0.5, Speed: 0.25}.Resolve(p)

	assert.Equal(t, Move{X: 10, Y: 20, Z: 30, T: 0.5, Speed: 0.25}, got)
}
