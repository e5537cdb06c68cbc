/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"
	"strings"

	"hdxplayer/internal/config"
	"hdxplayer/internal/decode"
	"hdxplayer/internal/logger"
	"hdxplayer/internal/meter"
	"hdxplayer/internal/output"
	"hdxplayer/internal/player"
	"hdxplayer/pkg/spec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile      string
	flagOutput   string
	flagRate     int
	flagChannels int
	flagWavPath  string
	flagSocket   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "hdx-player",
	Short:         "HDX-Player plays audio files and HDX volumes.",
	Version:       fmt.Sprintf("%d.%d", spec.VersionMajor, spec.VersionMinor),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env", ".env", "dotenv file with HDX_* settings")
	pf.StringVarP(&flagOutput, "output", "o", "", "output backend: "+strings.Join(output.Backends(), ", "))
	pf.IntVar(&flagRate, "rate", 0, "output sample rate")
	pf.IntVar(&flagChannels, "channels", 0, "output channels (1 or 2)")
	pf.StringVar(&flagWavPath, "wav-path", "", "target file for the wav backend")
	pf.StringVar(&flagSocket, "socket", "", "control socket path")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error")
}

// loadConfig reads .env and HDX_* variables, then applies explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = flagOutput
	}
	if flags.Changed("rate") {
		cfg.SampleRate = flagRate
	}
	if flags.Changed("channels") {
		cfg.Channels = flagChannels
	}
	if flags.Changed("wav-path") {
		cfg.WavPath = flagWavPath
	}
	if flags.Changed("socket") {
		cfg.Socket = flagSocket
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// app is the wired engine shared by play, console and serve.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	meter  *meter.Meter
	engine *player.Engine
	events chan player.Event
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, err
	}
	sinks, err := output.New(cfg.OutputConfig())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		meter:  meter.New(cfg.MeterWindow),
		events: make(chan player.Event, 32),
	}
	a.engine = player.New(
		decode.NewRegistry(cfg.SampleRate, cfg.BufferSize),
		a.meter.Wrap(sinks),
		player.WithLogger(log),
		player.WithFormat(cfg.SampleRate, cfg.Channels),
		player.WithNotify(a.notify),
	)
	log.Debug("configured",
		zap.String("output", cfg.Output),
		zap.Int("rate", cfg.SampleRate),
		zap.Int("channels", cfg.Channels),
		zap.Int("buffer", cfg.BufferSize),
	)
	return a, nil
}

// notify runs on the engine goroutine; it only hands the event off.
func (a *app) notify(ev player.Event) {
	select {
	case a.events <- ev:
	default:
		a.log.Warn("event dropped", zap.Stringer("event", ev.Kind))
	}
}
