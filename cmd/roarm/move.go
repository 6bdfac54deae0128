package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gwillem/roarm/pkg/protocol"
	"github.com/gwillem/roarm/pkg/robot"
)

type MoveCommand struct {
	Relative bool    `short:"r" long:"relative" description:"Treat x y z as offsets from the current position"`
	Angle    string  `short:"t" long:"angle" description:"Clamp angle (default: keep current)"`
	Speed    float64 `long:"speed" description:"Move speed (default from configuration)"`

	Args struct {
		X float64 `positional-arg-name:"x"`
		Y float64 `positional-arg-name:"y"`
		Z float64 `positional-arg-name:"z"`
	} `positional-args:"yes" required:"yes"`
}

func (c *MoveCommand) Execute(args []string) error {
	s, err := openSession(os.Stderr, false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.engine.QueryStatus(ctx, s.cfg.QueryTimeout()); err != nil {
		return fmt.Errorf("read current position: %w", err)
	}

	speed := s.cfg.Speed
	if c.Speed > 0 {
		speed = c.Speed
	}
	target, err := c.target(s.engine.CurrentPose(), speed)
	if err != nil {
		return err
	}
	if err := checkTarget(s.cfg.Workspace, target); err != nil {
		return err
	}

	if err := s.engine.Move(ctx, target.X, target.Y, target.Z, target.T, target.Speed); err != nil {
		return err
	}
	fmt.Printf("Moving to (%s, %s, %s) t=%s\n",
		formatValue(target.X), formatValue(target.Y), formatValue(target.Z), formatValue(target.T))
	return nil
}

// target resolves the command against the current pose.
func (c *MoveCommand) target(current robot.Pose, speed float64) (protocol.Move, error) {
	var m protocol.Move
	if c.Relative {
		m = protocol.MoveRelative{DX: c.Args.X, DY: c.Args.Y, DZ: c.Args.Z, Speed: speed}.Resolve(current)
	} else {
		m = protocol.Move{X: c.Args.X, Y: c.Args.Y, Z: c.Args.Z, T: current.T, Speed: speed}
	}
	if c.Angle != "" {
		t, err := strconv.ParseFloat(c.Angle, 64)
		if err != nil {
			return m, fmt.Errorf("invalid clamp angle %q", c.Angle)
		}
		m.T = t
	}
	return m, nil
}

func checkTarget(ws robot.Workspace, m protocol.Move) error {
	return ws.Check(robot.Pose{X: m.X, Y: m.Y, Z: m.Z, T: m.T})
}

type ClampCommand struct {
	Args struct {
		Action string `positional-arg-name:"open|close|amount" description:"open, close, or a relative amount between -1 and 1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *ClampCommand) Execute(args []string) error {
	action := strings.ToLower(strings.TrimSpace(c.Args.Action))
	var amount float64
	if action != "open" && action != "close" {
		var err error
		if amount, err = parseClampAmount(action); err != nil {
			return err
		}
	}

	s, err := openSession(os.Stderr, false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	switch action {
	case "open":
		if err := s.engine.OpenClamp(ctx); err != nil {
			return err
		}
		fmt.Println("Clamp opened")
		return nil
	case "close":
		if err := s.engine.CloseClamp(ctx); err != nil {
			return err
		}
		fmt.Println("Clamp closed")
		return nil
	}

	if _, err := s.engine.QueryStatus(ctx, s.cfg.QueryTimeout()); err != nil {
		return fmt.Errorf("read current clamp angle: %w", err)
	}
	target := protocol.ClampRelative{Amount: amount, Speed: s.cfg.Speed}.Resolve(s.engine.CurrentPose())
	if err := checkTarget(s.cfg.Workspace, target); err != nil {
		return err
	}
	if err := s.engine.ClampRelative(ctx, amount); err != nil {
		return err
	}
	fmt.Printf("Clamp opened relatively by %s\n", formatValue(amount))
	return nil
}

// parseClampAmount parses a relative clamp amount in [-1, 1].
func parseClampAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || amount < -1 || amount > 1 {
		return 0, fmt.Errorf("invalid amount %q: enter a number between -1 and 1", raw)
	}
	return amount, nil
}

// parseGoto parses "x y z".
func parseGoto(raw string) (x, y, z float64, err error) {
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid coordinates %q: want x y z", raw)
	}
	var vals [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid coordinate %q", f)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}
