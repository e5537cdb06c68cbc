/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"hdxplayer/internal/decode"
	"hdxplayer/internal/output"
	"hdxplayer/internal/pcm"
)

// track describes a synthetic decoder. frames < 0 never ends.
type track struct {
	id      float64
	frames  int
	failAt  int
	failErr error
	panicAt int
}

func finite(id float64, n int) track { return track{id: id, frames: n, failAt: -1, panicAt: -1} }
func endless(id float64) track      { return track{id: id, frames: -1, failAt: -1, panicAt: -1} }

type fakeDecoder struct {
	t      track
	pos    int
	mu     sync.Mutex
	closed bool
}

func (d *fakeDecoder) NextFrame() (pcm.Frame, error) {
	if d.pos == d.t.panicAt {
		panic("decoder exploded")
	}
	if d.pos == d.t.failAt {
		return pcm.Frame{}, d.t.failErr
	}
	if d.t.frames >= 0 && d.pos >= d.t.frames {
		return pcm.Frame{}, io.EOF
	}
	f := pcm.Frame{d.t.id, float64(d.pos)}
	d.pos++
	return f, nil
}

func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDecoder) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fakeLibrary struct {
	mu       sync.Mutex
	tracks   map[string]track
	opened   []string
	decoders []*fakeDecoder
}

func newLibrary(tracks map[string]track) *fakeLibrary {
	return &fakeLibrary{tracks: tracks}
}

func (l *fakeLibrary) Open(path string) (decode.Decoder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, path)
	t, ok := l.tracks[path]
	if !ok {
		return nil, &decode.DecodeError{Path: path, Kind: decode.ErrNotFound}
	}
	d := &fakeDecoder{t: t}
	l.decoders = append(l.decoders, d)
	return d, nil
}

func (l *fakeLibrary) openCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.opened)
}

// countSink counts writes and checks that frames of one track arrive in
// order.
type countSink struct {
	mu       sync.Mutex
	writes   int
	ids      map[float64]int
	outOfSeq bool
	drained  bool
	closed   bool
	failAt   int
}

func (s *countSink) Write(f pcm.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt >= 0 && s.writes == s.failAt {
		return &output.SinkError{Backend: "fake", Kind: output.ErrDeviceUnavailable}
	}
	if int(f[1]) != s.ids[f[0]] {
		s.outOfSeq = true
	}
	s.ids[f[0]]++
	s.writes++
	return nil
}

func (s *countSink) Drain() error {
	s.mu.Lock()
	s.drained = true
	s.mu.Unlock()
	return nil
}

func (s *countSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type sinkStats struct {
	writes   int
	ids      map[float64]int
	outOfSeq bool
	drained  bool
	closed   bool
}

func (s *countSink) stats() sinkStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[float64]int, len(s.ids))
	for k, v := range s.ids {
		ids[k] = v
	}
	return sinkStats{s.writes, ids, s.outOfSeq, s.drained, s.closed}
}

type fakeDevice struct {
	mu      sync.Mutex
	sinks   []*countSink
	openErr error
	failAt  int
}

func newDevice() *fakeDevice { return &fakeDevice{failAt: -1} }

func (d *fakeDevice) Open(rate, channels int) (output.Sink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &countSink{ids: make(map[float64]int), failAt: d.failAt}
	d.sinks = append(d.sinks, s)
	return s, nil
}

func (d *fakeDevice) opened() []*countSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*countSink(nil), d.sinks...)
}

// harness runs an engine and collects its events.
type harness struct {
	t      *testing.T
	engine *Engine
	lib    *fakeLibrary
	dev    *fakeDevice
	events chan Event
	cancel context.CancelFunc
	runErr chan error
}

func newHarness(t *testing.T, tracks map[string]track) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		lib:    newLibrary(tracks),
		dev:    newDevice(),
		events: make(chan Event, 64),
		runErr: make(chan error, 1),
	}
	h.engine = New(h.lib, h.dev, WithNotify(func(ev Event) { h.events <- ev }))
	return h
}

func (h *harness) start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.runErr <- h.engine.Run(ctx) }()
	h.t.Cleanup(func() {
		cancel()
		<-h.engine.Done()
	})
}

func (h *harness) next() Event {
	h.t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(5 * time.Second):
		h.t.Fatal("timed out waiting for engine event")
		return Event{}
	}
}

func (h *harness) expect(kind EventKind, track string) Event {
	h.t.Helper()
	ev := h.next()
	if ev.Kind != kind || ev.Track != track {
		h.t.Fatalf("event = %v %q (err %v), want %v %q", ev.Kind, ev.Track, ev.Err, kind, track)
	}
	return ev
}

func (h *harness) quiet() {
	h.t.Helper()
	select {
	case ev := <-h.events:
		h.t.Fatalf("unexpected event %v %q", ev.Kind, ev.Track)
	case <-time.After(50 * time.Millisecond):
	}
}
