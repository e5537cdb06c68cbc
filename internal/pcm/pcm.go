/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package pcm holds the sample frame exchanged between decoders and sinks.
package pcm

import "fmt"

// Frame is one sample per channel at a single instant, left then right,
// each in [-1, 1]. Mono material carries the same value in both slots.
type Frame [2]float64

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// Mono folds both channels into one value.
func (f Frame) Mono() float64 {
	return (f[0] + f[1]) / 2
}

// Int16 converts a sample to signed 16-bit, clamping out of range values.
func Int16(v float64) int16 {
	if v >= 1 {
		return 32767
	}
	if v <= -1 {
		return -32768
	}
	return int16(v * 32767)
}

// FromInt converts an integer sample of the given bit depth to [-1, 1].
func FromInt(v int, bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return float64(v) / float64(int(1)<<(bitDepth-1))
}
