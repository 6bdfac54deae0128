// Package roarm provides control of JSON-protocol robot arms over a serial link.
//
// The arm firmware accepts single-line JSON commands ({"T":104,...} to move,
// {"T":105} to ask for status, {"T":106,...} for the clamp) and answers with
// JSON status reports carrying pose and joint torques.
//
// # Installation
//
//	go install github.com/gwillem/roarm/cmd/roarm@latest
//
// # Usage
//
// First, run setup to pick the serial port:
//
//	roarm setup
//
// Then drive the arm from the keyboard:
//
//	roarm control
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/roarm: CLI with setup, control, status, move and clamp commands
//   - pkg/link: Link engine (command API, status queries, telemetry)
//   - pkg/protocol: Wire encoding, telemetry decoding and frame reassembly
//   - pkg/robot: Arm state, workspace limits and configuration
//   - pkg/monitor: Periodic status polling
//   - pkg/serialport: Serial port access
package roarm
