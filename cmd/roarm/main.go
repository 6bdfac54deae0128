package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/roarm/pkg/robot"
)

type Options struct {
	Config      string `long:"config" description:"Path to the configuration file"`
	Port        string `long:"port" description:"Serial port (overrides the configuration file)"`
	LogLevel    string `long:"log-level" env:"ROARM_LOG_LEVEL" description:"Log level: trace, debug, info, warn, error, off"`
	MetricsAddr string `long:"metrics-addr" description:"Serve Prometheus metrics on this address, e.g. :9090"`

	Setup   SetupCommand   `command:"setup" description:"Pick the serial port and save the configuration"`
	Ports   PortsCommand   `command:"ports" description:"List serial ports"`
	Control ControlCommand `command:"control" alias:"ctl" description:"Interactive keyboard control"`
	Status  StatusCommand  `command:"status" description:"Query and print the arm status"`
	Move    MoveCommand    `command:"move" description:"Move to a position"`
	Clamp   ClampCommand   `command:"clamp" description:"Open, close or nudge the clamp"`
}

var opts = Options{Config: robot.DefaultConfigFile}
var parser = newParser(&opts, flags.Default)

func newParser(o *Options, options flags.Options) *flags.Parser {
	p := flags.NewParser(o, options)
	p.LongDescription = "roarm - Robot arm control over a JSON serial link"
	return p
}

func main() {
	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
