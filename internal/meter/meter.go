/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package meter measures the level and spectrum of the audio being played.
package meter

import (
	"math"
	"sync"

	"hdxplayer/internal/output"
	"hdxplayer/internal/pcm"
	"hdxplayer/pkg/spec"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// NumBands is the number of log-spaced spectrum bands.
const NumBands = 8

// Floor is the lowest reported level in dBFS.
const Floor = -96.0

// Levels is the measurement of the most recent complete window.
type Levels struct {
	Peak   float64           `json:"peak"`    // linear, 0..1
	RMS    float64           `json:"rms_db"`  // dBFS
	Bands  [NumBands]float64 `json:"bands_db"` // dBFS per band, low to high
	Frames uint64            `json:"frames"`  // frames metered since Reset
}

// Meter accumulates mono-folded frames and publishes Levels once per window.
// Add is called from the playback goroutine; Snapshot from anywhere.
type Meter struct {
	size  int
	buf   []float64
	hann  []float64
	gain  float64 // normalises FFT magnitude to sine amplitude
	edges [NumBands + 1]int

	mu    sync.RWMutex
	last  Levels
	total uint64
}

// New returns a Meter with the given window length in frames.
func New(size int) *Meter {
	if size < 2*NumBands {
		size = spec.MeterWindow
	}
	m := &Meter{
		size: size,
		buf:  make([]float64, 0, size),
		hann: window.Hann(size),
	}

	var sum float64
	for _, w := range m.hann {
		sum += w
	}
	m.gain = 2 / sum

	// Band k covers bins [edges[k], edges[k+1]) on a log scale, DC excluded
	// and nyquist included.
	half := size / 2
	top := math.Log2(float64(half))
	prev := 1
	for k := 0; k <= NumBands; k++ {
		e := int(math.Pow(2, top*float64(k)/NumBands))
		if k == NumBands {
			e = half + 1
		}
		if e <= prev && k > 0 {
			e = prev + 1
		}
		if e > half+1 {
			e = half + 1
		}
		m.edges[k] = e
		prev = e
	}
	m.edges[0] = 1

	m.last = silent()
	return m
}

func silent() Levels {
	l := Levels{RMS: Floor}
	for i := range l.Bands {
		l.Bands[i] = Floor
	}
	return l
}

// Add feeds one frame.
func (m *Meter) Add(f pcm.Frame) {
	m.buf = append(m.buf, f.Mono())
	if len(m.buf) == m.size {
		m.measure()
		m.buf = m.buf[:0]
	}
}

func (m *Meter) measure() {
	var peak, sq float64
	windowed := make([]float64, m.size)
	for i, v := range m.buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
		sq += v * v
		windowed[i] = v * m.hann[i]
	}

	l := Levels{Peak: peak, RMS: toDB(math.Sqrt(sq / float64(m.size)))}

	coeffs := fft.FFTReal(windowed)
	for k := 0; k < NumBands; k++ {
		var max float64
		for bin := m.edges[k]; bin < m.edges[k+1]; bin++ {
			c := coeffs[bin]
			mag := math.Sqrt(real(c)*real(c)+imag(c)*imag(c)) * m.gain
			if mag > max {
				max = mag
			}
		}
		l.Bands[k] = toDB(max)
	}

	m.mu.Lock()
	m.total += uint64(m.size)
	l.Frames = m.total
	m.last = l
	m.mu.Unlock()
}

func toDB(v float64) float64 {
	if v <= 0 {
		return Floor
	}
	db := 20 * math.Log10(v)
	if db < Floor {
		return Floor
	}
	return db
}

// Snapshot returns the latest Levels.
func (m *Meter) Snapshot() Levels {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Reset drops any partial window and reports silence. It must be called from
// the goroutine that calls Add.
func (m *Meter) Reset() {
	m.buf = m.buf[:0]
	m.mu.Lock()
	m.last = silent()
	m.total = 0
	m.mu.Unlock()
}

// Wrap returns an Opener whose sinks feed m before writing through.
func (m *Meter) Wrap(next output.Opener) output.Opener {
	return output.OpenerFunc(func(rate, channels int) (output.Sink, error) {
		sink, err := next.Open(rate, channels)
		if err != nil {
			return nil, err
		}
		m.Reset()
		return &tap{Sink: sink, meter: m}, nil
	})
}

type tap struct {
	output.Sink
	meter *Meter
}

func (t *tap) Write(f pcm.Frame) error {
	t.meter.Add(f)
	return t.Sink.Write(f)
}

func (t *tap) Drain() error {
	if d, ok := t.Sink.(output.Drainer); ok {
		return d.Drain()
	}
	return nil
}

func (t *tap) Close() error {
	err := t.Sink.Close()
	t.meter.Reset()
	return err
}
