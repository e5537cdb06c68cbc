/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

var hdxKeys = []string{
	"HDX_SAMPLE_RATE", "HDX_CHANNELS", "HDX_BUFFER_SIZE", "HDX_OUTPUT", "HDX_PIPE_COMMAND",
	"HDX_WAV_PATH", "HDX_SOCKET", "HDX_METER_WINDOW", "HDX_LOG_LEVEL", "HDX_LOG_FILE",
	"HDX_LOG_MAX_SIZE", "HDX_LOG_MAX_BACKUPS", "HDX_LOG_MAX_AGE", "HDX_LOG_COMPRESS",
}

// clearEnv unsets every HDX_ variable for the test, restoring them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range hdxKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.Channels != 2 || cfg.BufferSize != 1000 {
		t.Errorf("format defaults = %d/%d/%d", cfg.SampleRate, cfg.Channels, cfg.BufferSize)
	}
	if cfg.Output != "speaker" || cfg.Socket != "/tmp/hdx-player.sock" || cfg.WavPath != "hdx-output.wav" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.LogMaxSize != 10 || cfg.LogMaxBackups != 3 || cfg.LogMaxAge != 28 || cfg.LogCompress {
		t.Errorf("log rotation defaults = %+v", cfg)
	}
}

func TestLoadEnvFileAndOverride(t *testing.T) {
	clearEnv(t)
	env := filepath.Join(t.TempDir(), "player.env")
	content := "HDX_SAMPLE_RATE=48000\nHDX_OUTPUT=wav\nHDX_WAV_PATH=/tmp/x.wav\nHDX_LOG_COMPRESS=true\n"
	if err := os.WriteFile(env, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HDX_SAMPLE_RATE", "22050")

	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("sample rate = %d, environment must win over .env", cfg.SampleRate)
	}
	if cfg.Output != "wav" || cfg.WavPath != "/tmp/x.wav" || !cfg.LogCompress {
		t.Errorf("cfg = %+v", cfg)
	}
	if oc := cfg.OutputConfig(); oc.Backend != "wav" || oc.BufferSize != 1000 {
		t.Errorf("output config = %+v", oc)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"HDX_SAMPLE_RATE", "fast"},
		{"HDX_SAMPLE_RATE", "100"},
		{"HDX_CHANNELS", "6"},
		{"HDX_BUFFER_SIZE", "0"},
		{"HDX_OUTPUT", "jack"},
		{"HDX_LOG_LEVEL", "verbose"},
		{"HDX_LOG_COMPRESS", "maybe"},
		{"HDX_METER_WINDOW", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Errorf("%s=%s accepted", tt.key, tt.value)
			}
		})
	}
}
