package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"github.com/gwillem/roarm/pkg/link"
	"github.com/gwillem/roarm/pkg/robot"
	"github.com/gwillem/roarm/pkg/serialport"
)

// session is an open link to the arm.
type session struct {
	cfg    robot.Config
	log    zerolog.Logger
	port   serial.Port
	engine *link.Engine

	cancel context.CancelFunc
	done   chan error
}

// loadConfig reads the configuration file and applies --port. A missing
// file is fine when --port is given.
func loadConfig() (robot.Config, error) {
	var cfg robot.Config
	loaded, err := robot.LoadConfigFrom(opts.Config)
	switch {
	case err == nil:
		cfg = *loaded
	case errors.Is(err, os.ErrNotExist) && opts.Port != "":
	case errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("no configuration found at %s; run 'roarm setup' or pass --port", opts.Config)
	default:
		return cfg, fmt.Errorf("load %s: %w", opts.Config, err)
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if !cfg.IsConfigured() {
		return cfg, fmt.Errorf("no serial port configured; run 'roarm setup' or pass --port")
	}
	return cfg.WithDefaults(), nil
}

// openSession opens the serial port and starts the engine's read loop.
// Logs go to logOut.
func openSession(logOut io.Writer, noColor bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openSessionWith(cfg, logOut, noColor)
}

func openSessionWith(cfg robot.Config, logOut io.Writer, noColor bool) (*session, error) {
	logger := newLogger(logOut, opts.LogLevel, noColor)

	metrics, err := link.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	if opts.MetricsAddr != "" {
		serveMetrics(opts.MetricsAddr, logger)
	}

	portCfg := serialport.DefaultConfig(cfg.Port)
	if cfg.BaudRate > 0 {
		portCfg.BaudRate = cfg.BaudRate
	}
	port, err := serialport.Open(portCfg)
	if err != nil {
		return nil, err
	}

	engineOpts := []link.Option{
		link.WithLogger(logger),
		link.WithMetrics(metrics),
		link.WithDefaultSpeed(cfg.Speed),
	}
	if cfg.Optimistic {
		engineOpts = append(engineOpts, link.WithOptimisticEcho())
	}
	eng := link.New(port, engineOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		cfg:    cfg,
		log:    logger,
		port:   port,
		engine: eng,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() {
		err := eng.Run(ctx, port)
		if err != nil {
			logger.Error().Err(err).Msg("read loop stopped")
		}
		s.done <- err
	}()

	logger.Debug().
		Str("port", portCfg.Port).
		Int("baud", portCfg.BaudRate).
		Stringer("policy", eng.Policy()).
		Msg("link open")
	return s, nil
}

// Close stops the read loop and closes the port.
func (s *session) Close() error {
	s.cancel()
	<-s.done
	return s.port.Close()
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}
