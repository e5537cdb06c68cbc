/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package output delivers PCM frames to an audio device or file.
package output

import (
	"fmt"
	"strings"

	"hdxplayer/internal/pcm"
	"hdxplayer/pkg/spec"
)

// Sink consumes frames in real time. Write blocks while the device buffer is
// full. Close may be called at any point and releases the device.
type Sink interface {
	Write(f pcm.Frame) error
	Close() error
}

// Drainer is implemented by sinks that buffer internally. Drain blocks until
// every written frame has been played.
type Drainer interface {
	Drain() error
}

// Opener opens a sink for the given format.
type Opener interface {
	Open(rate, channels int) (Sink, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(rate, channels int) (Sink, error)

func (f OpenerFunc) Open(rate, channels int) (Sink, error) { return f(rate, channels) }

// Backend names.
const (
	Speaker   = "speaker"
	PortAudio = "portaudio"
	Pipe      = "pipe"
	Wav       = "wav"
)

// Config selects and tunes a backend.
type Config struct {
	Backend     string
	BufferSize  int    // frames buffered inside the sink
	PipeCommand string // pipe backend program line; empty detects one
	WavPath     string
}

// New returns the Opener for cfg.Backend.
func New(cfg Config) (Opener, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = spec.BufferSize
	}

	switch strings.ToLower(cfg.Backend) {
	case "", Speaker:
		return OpenerFunc(func(rate, channels int) (Sink, error) {
			return openSpeaker(rate, channels, cfg.BufferSize)
		}), nil
	case PortAudio:
		return OpenerFunc(func(rate, channels int) (Sink, error) {
			return openPortAudio(rate, channels, cfg.BufferSize)
		}), nil
	case Pipe:
		return OpenerFunc(func(rate, channels int) (Sink, error) {
			return openPipe(cfg.PipeCommand, rate, channels, cfg.BufferSize)
		}), nil
	case Wav:
		if cfg.WavPath == "" {
			return nil, fmt.Errorf("wav output needs a target path")
		}
		return OpenerFunc(func(rate, channels int) (Sink, error) {
			return openWav(cfg.WavPath, rate, channels, cfg.BufferSize)
		}), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q (want %s)", cfg.Backend, strings.Join(Backends(), ", "))
	}
}

// Backends lists the names accepted by New.
func Backends() []string {
	return []string{Speaker, PortAudio, Pipe, Wav}
}
