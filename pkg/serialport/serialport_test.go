package serialport

import (
	"testing"
	"time"
)

func TestFilterPorts(t *testing.T) {
	got := filterPorts([]string{
		"/dev/cu.Bluetooth-Incoming-Port",
		"/dev/ttyUSB0",
		"/dev/serial0",
		"/dev/tty.Bluetooth-Modem",
	})

	want := []string{"/dev/ttyUSB0", "/dev/serial0"}
	if len(got) != len(want) {
		t.Fatalf("filterPorts returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("filterPorts()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/serial0")

	if cfg.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", cfg.BaudRate)
	}
	if cfg.ReadTimeout != 100*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 100ms", cfg.ReadTimeout)
	}
}

func TestOpen_MissingPort(t *testing.T) {
	if _, err := Open(DefaultConfig("/dev/does-not-exist-roarm")); err == nil {
		t.Fatal("Open on a missing port should fail")
	}
}
