// Package serialport opens the arm's serial link.
package serialport

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the arm firmware's UART speed.
const DefaultBaudRate = 115200

// Config holds serial port settings.
type Config struct {
	Port     string
	BaudRate int
	// ReadTimeout bounds each Read so read loops can observe cancellation.
	ReadTimeout time.Duration
}

// DefaultConfig returns 115200 8N1 with a 100ms read timeout.
func DefaultConfig(port string) Config {
	return Config{
		Port:        port,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Open opens the port in 8N1 mode. A Read that hits the timeout returns
// 0, nil.
func Open(cfg Config) (serial.Port, error) {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}
	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}

	// Drop anything the firmware printed before we attached
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset input: %w", err)
	}
	return port, nil
}

// Ports lists serial ports that could host the arm.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	return filterPorts(ports), nil
}

func filterPorts(ports []string) []string {
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(p, "Bluetooth") {
			continue
		}
		out = append(out, p)
	}
	return out
}
