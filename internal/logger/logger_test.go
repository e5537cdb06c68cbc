/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		err  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"", zapcore.InfoLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNewConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "hdx.log")

	log, err := New(Config{Level: "info", File: file, MaxSize: 1, Console: &console})
	if err != nil {
		t.Fatal(err)
	}
	log.Named("engine").Info("track started", zap.String("track", "a.mp3"))
	log.Debug("hidden")
	log.Sync()

	line := strings.TrimSpace(console.String())
	if strings.Contains(line, "hidden") {
		t.Error("debug line written at info level")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("console line %q: %v", line, err)
	}
	if entry["logger"] != "engine" || entry["msg"] != "track started" || entry["track"] != "a.mp3" {
		t.Errorf("entry = %v", entry)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"track started"`) {
		t.Errorf("file log = %q", data)
	}
}
