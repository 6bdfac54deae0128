package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/roarm/pkg/robot"
	"github.com/gwillem/roarm/pkg/serialport"
)

type SetupCommand struct {
	SkipCheck bool `long:"skip-check" description:"Save without querying the arm"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("roarm setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg := robot.Config{}
	if existing, err := robot.LoadConfigFrom(opts.Config); err == nil {
		cfg = *existing
	}
	cfg = cfg.WithDefaults()

	// Step 1: pick the port
	ports, err := serialport.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		os.Exit(1)
	}

	baud := strconv.Itoa(cfg.BaudRate)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the arm on?").
				Options(portOptions(ports, cfg.Port)...).
				Value(&cfg.Port),
			huh.NewInput().
				Title("Baud rate").
				Value(&baud).
				Validate(validateBaud),
			huh.NewConfirm().
				Title("Update position immediately when a move is sent?").
				Description("Otherwise the position only changes when the arm reports it").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Optimistic),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	cfg.BaudRate, _ = strconv.Atoi(strings.TrimSpace(baud))

	// Step 2: check the link
	if !c.SkipCheck {
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ Checking link ━━━"))
		if err := checkLink(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Arm did not answer on %s: %v\n", cfg.Port, err)
			fmt.Fprintln(os.Stderr, "Configuration not saved. Use --skip-check to save anyway.")
			os.Exit(1)
		}
	}

	// Step 3: save
	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start control with: " + headerStyle.Render("roarm control"))
	return nil
}

// portOptions lists ports with the current one first.
func portOptions(ports []string, current string) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(ports))
	for _, p := range ports {
		if p == current {
			options = append([]huh.Option[string]{huh.NewOption(p+" (current)", p)}, options...)
			continue
		}
		options = append(options, huh.NewOption(p, p))
	}
	return options
}

func validateBaud(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// checkLink opens the chosen port and waits for one status report.
func checkLink(cfg robot.Config) error {
	s, err := openSessionWith(cfg, os.Stderr, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.engine.QueryStatus(context.Background(), cfg.QueryTimeout()); err != nil {
		return err
	}
	pose, torques, _ := s.engine.Snapshot()
	fmt.Println(renderStatus(pose, torques))
	return nil
}
