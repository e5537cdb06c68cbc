/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package meter

import (
	"math"
	"testing"

	"hdxplayer/internal/output"
	"hdxplayer/internal/pcm"
)

func TestMeterSine(t *testing.T) {
	const size = 1024
	const bin = 64
	m := New(size)

	for i := 0; i < size; i++ {
		v := 0.5 * math.Sin(2*math.Pi*bin*float64(i)/size)
		m.Add(pcm.Frame{v, v})
	}

	l := m.Snapshot()
	if math.Abs(l.Peak-0.5) > 1e-9 {
		t.Errorf("peak = %v, want 0.5", l.Peak)
	}
	if want := 20 * math.Log10(0.5/math.Sqrt2); math.Abs(l.RMS-want) > 0.01 {
		t.Errorf("rms = %v dB, want %v", l.RMS, want)
	}
	if l.Frames != size {
		t.Errorf("frames = %d", l.Frames)
	}

	band := -1
	for k := 0; k < NumBands; k++ {
		if m.edges[k] <= bin && bin < m.edges[k+1] {
			band = k
		}
	}
	if band < 0 {
		t.Fatalf("bin %d outside band edges %v", bin, m.edges)
	}
	for k, v := range l.Bands {
		if k != band && v >= l.Bands[band] {
			t.Errorf("band %d (%v dB) >= tone band %d (%v dB)", k, v, band, l.Bands[band])
		}
	}
	if math.Abs(l.Bands[band]-20*math.Log10(0.5)) > 1 {
		t.Errorf("tone band = %v dB, want about -6", l.Bands[band])
	}
}

func TestMeterSilenceAndPartialWindow(t *testing.T) {
	m := New(64)
	for i := 0; i < 63; i++ {
		m.Add(pcm.Frame{0.9, 0.9})
	}
	if l := m.Snapshot(); l.Frames != 0 || l.RMS != Floor {
		t.Errorf("partial window published: %+v", l)
	}

	m.Reset()
	for i := 0; i < 64; i++ {
		m.Add(pcm.Frame{})
	}
	l := m.Snapshot()
	if l.Peak != 0 || l.RMS != Floor {
		t.Errorf("silence = %+v", l)
	}
	for _, b := range l.Bands {
		if b != Floor {
			t.Errorf("silent band = %v", b)
		}
	}
}

func TestMeterEdgesIncreasing(t *testing.T) {
	for _, size := range []int{16, 64, 1024, 4096} {
		m := New(size)
		for k := 0; k < NumBands; k++ {
			if m.edges[k] >= m.edges[k+1] {
				t.Errorf("size %d: edges not increasing: %v", size, m.edges)
				break
			}
		}
		if m.edges[NumBands] != size/2+1 {
			t.Errorf("size %d: top edge %d past nyquist", size, m.edges[NumBands])
		}
	}
}

type countSink struct {
	frames  int
	drained bool
	closed  bool
}

func (c *countSink) Write(pcm.Frame) error { c.frames++; return nil }
func (c *countSink) Drain() error          { c.drained = true; return nil }
func (c *countSink) Close() error          { c.closed = true; return nil }

func TestWrap(t *testing.T) {
	inner := &countSink{}
	m := New(16)
	op := m.Wrap(output.OpenerFunc(func(rate, channels int) (output.Sink, error) {
		return inner, nil
	}))

	sink, err := op.Open(44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 40; i++ {
		sink.Write(pcm.Frame{0.1, 0.1})
	}
	if inner.frames != 40 {
		t.Errorf("inner frames = %d", inner.frames)
	}
	if got := m.Snapshot().Frames; got != 32 {
		t.Errorf("metered frames = %d, want 32", got)
	}

	sink.(output.Drainer).Drain()
	sink.Close()
	if !inner.drained || !inner.closed {
		t.Errorf("drain/close not forwarded: %+v", inner)
	}
	if m.Snapshot().Frames != 0 {
		t.Error("meter not reset on close")
	}
}
