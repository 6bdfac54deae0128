package robot

import (
	"encoding/json"
	"os"
	"time"
)

const DefaultConfigFile = "roarm.json"

// Defaults applied by WithDefaults.
const (
	DefaultBaudRate       = 115200
	DefaultQueryTimeoutMs = 5000
	DefaultSpeed          = 0.25
	DefaultStep           = 2
)

// Config holds the arm configuration
type Config struct {
	Port           string    `json:"port"`
	BaudRate       int       `json:"baud_rate,omitempty"`
	QueryTimeoutMs int       `json:"query_timeout_ms,omitempty"`
	Speed          float64   `json:"speed,omitempty"`
	Step           float64   `json:"step,omitempty"`
	Optimistic     bool      `json:"optimistic,omitempty"`
	Workspace      Workspace `json:"workspace,omitempty"`
}

// IsConfigured returns true if a serial port has been chosen
func (c *Config) IsConfigured() bool {
	return c.Port != ""
}

// WithDefaults returns a copy with unset fields filled in
func (c Config) WithDefaults() Config {
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.QueryTimeoutMs <= 0 {
		c.QueryTimeoutMs = DefaultQueryTimeoutMs
	}
	if c.Speed <= 0 {
		c.Speed = DefaultSpeed
	}
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if len(c.Workspace) == 0 {
		c.Workspace = DefaultWorkspace()
	}
	return c
}

// QueryTimeout returns the status query timeout
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
