package robot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Port: "/dev/ttyUSB0"}.WithDefaults()

	assert.Equal(t, DefaultBaudRate, cfg.BaudRate)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout())
	assert.Equal(t, 0.25, cfg.Speed)
	assert.Equal(t, 2.0, cfg.Step)
	assert.Equal(t, DefaultWorkspace(), cfg.Workspace)
}

func TestConfig_WithDefaultsKeepsValues(t *testing.T) {
	cfg := Config{BaudRate: 9600, QueryTimeoutMs: 100, Speed: 1, Step: 5}.WithDefaults()

	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, 100*time.Millisecond, cfg.QueryTimeout())
	assert.Equal(t, 1.0, cfg.Speed)
	assert.Equal(t, 5.0, cfg.Step)
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	cfg := &Config{
		Port:       "/dev/serial0",
		BaudRate:   115200,
		Optimistic: true,
		Workspace:  Workspace{AxisX: {Min: -1, Max: 1}},
	}
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.True(t, loaded.IsConfigured())
}

func TestLoadConfigFrom_Missing(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
