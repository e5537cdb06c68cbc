/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package config loads player settings from .env and HDX_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"hdxplayer/internal/logger"
	"hdxplayer/internal/output"
	"hdxplayer/pkg/spec"

	"github.com/joho/godotenv"
)

type Config struct {
	SampleRate  int
	Channels    int
	BufferSize  int
	Output      string
	PipeCommand string
	WavPath     string
	Socket      string
	MeterWindow int

	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// Load reads the .env files (missing ones are fine, existing variables win)
// and then the environment. The result is validated.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Output:      getEnv("HDX_OUTPUT", output.Speaker),
		PipeCommand: getEnv("HDX_PIPE_COMMAND", ""),
		WavPath:     getEnv("HDX_WAV_PATH", "hdx-output.wav"),
		Socket:      getEnv("HDX_SOCKET", "/tmp/hdx-player.sock"),
		LogLevel:    getEnv("HDX_LOG_LEVEL", "info"),
		LogFile:     getEnv("HDX_LOG_FILE", ""),
	}

	ints := []struct {
		key      string
		dst      *int
		fallback int
	}{
		{"HDX_SAMPLE_RATE", &cfg.SampleRate, spec.DefaultSampleRate},
		{"HDX_CHANNELS", &cfg.Channels, spec.DefaultChannels},
		{"HDX_BUFFER_SIZE", &cfg.BufferSize, spec.BufferSize},
		{"HDX_METER_WINDOW", &cfg.MeterWindow, spec.MeterWindow},
		{"HDX_LOG_MAX_SIZE", &cfg.LogMaxSize, 10},
		{"HDX_LOG_MAX_BACKUPS", &cfg.LogMaxBackups, 3},
		{"HDX_LOG_MAX_AGE", &cfg.LogMaxAge, 28},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.fallback)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	compress, err := getEnvBool("HDX_LOG_COMPRESS", false)
	if err != nil {
		return nil, err
	}
	cfg.LogCompress = compress

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range 8000..192000", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if c.MeterWindow < 16 {
		return fmt.Errorf("meter window must be at least 16 frames, got %d", c.MeterWindow)
	}
	if _, err := output.New(c.OutputConfig()); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// OutputConfig returns the sink settings.
func (c *Config) OutputConfig() output.Config {
	return output.Config{
		Backend:     c.Output,
		BufferSize:  c.BufferSize,
		PipeCommand: c.PipeCommand,
		WavPath:     c.WavPath,
	}
}

// LoggerConfig returns the logging settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge,
		Compress:   c.LogCompress,
	}
}
