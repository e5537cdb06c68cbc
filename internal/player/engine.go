/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package player runs the playback engine: one goroutine that takes Load and
// Stop actions from a queue and streams decoder frames into an output sink.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"hdxplayer/internal/decode"
	"hdxplayer/internal/output"
	"hdxplayer/internal/pcm"
	"hdxplayer/pkg/spec"

	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("engine already running")

// session is the decoder/sink pair of the current track.
type session struct {
	track  string
	dec    decode.Decoder
	sink   output.Sink
	frames uint64
}

// Engine owns playback. EnqueueLoad, EnqueueStop and IsPlaying are safe from
// any goroutine; everything else runs on the goroutine inside Run.
type Engine struct {
	queue    *Queue
	flag     PlaybackFlag
	decoders decode.Opener
	sinks    output.Opener
	rate     int
	channels int
	log      *zap.Logger
	notify   func(Event)

	running   atomic.Bool
	startOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}

	// engine goroutine only
	state   State
	session *session
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithNotify registers fn for every transition. fn runs on the engine
// goroutine and must not block.
func WithNotify(fn func(Event)) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithFormat sets the rate and channel count sinks are opened with.
func WithFormat(rate, channels int) Option {
	return func(e *Engine) { e.rate, e.channels = rate, channels }
}

func New(decoders decode.Opener, sinks output.Opener, opts ...Option) *Engine {
	e := &Engine{
		queue:    NewQueue(),
		decoders: decoders,
		sinks:    sinks,
		rate:     spec.DefaultSampleRate,
		channels: spec.DefaultChannels,
		log:      zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("engine")
	return e
}

// EnqueueLoad asks the engine to play path, replacing the current track.
func (e *Engine) EnqueueLoad(path string) { e.queue.Push(Load{Path: path}) }

// EnqueueStop asks the engine to stop.
func (e *Engine) EnqueueStop() { e.queue.Push(Stop{}) }

// Enqueue pushes any action.
func (e *Engine) Enqueue(a Action) { e.queue.Push(a) }

// IsPlaying reports the flag as of the last committed transition.
func (e *Engine) IsPlaying() bool { return e.flag.IsPlaying() }

// Start runs the engine on its own goroutine. Later calls do nothing.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		go func() {
			if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.log.Error("engine stopped", zap.Error(err))
			}
		}()
	})
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Run processes actions until ctx is cancelled, then releases the current
// session and returns ctx.Err(). A failing track never ends Run.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.doneOnce.Do(func() { close(e.done) })

	e.log.Info("engine started", zap.Stringer("format", pcm.Format{SampleRate: e.rate, Channels: e.channels}))

	for {
		if ctx.Err() != nil {
			if e.session != nil {
				e.stop()
			}
			e.log.Info("engine shutdown")
			return ctx.Err()
		}

		if a, ok := e.queue.TryPop(); ok {
			e.apply(a)
			continue
		}

		if e.session != nil {
			e.stream(ctx)
			continue
		}

		select {
		case <-ctx.Done():
		case <-e.queue.Ready():
		}
	}
}

func (e *Engine) apply(a Action) {
	e.log.Debug("action", zap.Stringer("action", a), zap.Stringer("state", e.state))

	switch a := a.(type) {
	case Load:
		e.load(a.Path)
	case Stop:
		if e.session == nil {
			e.log.Debug("stop while idle ignored")
			return
		}
		e.stop()
	}
}

// load tears down the current session, if any, and opens path. The flag is
// left true across the switch when the new track opens.
func (e *Engine) load(path string) {
	if s := e.session; s != nil {
		e.state = Stopping
		e.release(s)
		e.session = nil
		e.log.Info("track interrupted", zap.String("track", s.track), zap.Uint64("frames", s.frames))
	}

	dec, err := e.openDecoder(path)
	if err != nil {
		e.fail(path, 0, err)
		return
	}
	sink, err := e.openSink()
	if err != nil {
		e.closeQuietly("decoder", dec.Close)
		e.fail(path, 0, err)
		return
	}

	e.session = &session{track: path, dec: dec, sink: sink}
	e.state = Playing
	e.flag.set(true)
	e.log.Info("track started", zap.String("track", path))
	e.emit(Event{Kind: Started, Track: path, Playing: true})
}

// stream moves frames from decoder to sink until an action is pending, ctx
// is done, or the session ends.
func (e *Engine) stream(ctx context.Context) {
	s := e.session
	cancelled := ctx.Done()

	for !e.queue.Pending() {
		select {
		case <-cancelled:
			return
		default:
		}

		f, err := e.nextFrame(s)
		if err == io.EOF {
			e.finish()
			return
		}
		if err != nil {
			e.teardown()
			e.fail(s.track, s.frames, err)
			return
		}

		if err := e.write(s, f); err != nil {
			e.teardown()
			e.fail(s.track, s.frames, err)
			return
		}
		s.frames++
	}
}

// finish handles end of stream: drain, release, idle.
func (e *Engine) finish() {
	s := e.session
	e.session = nil

	if err := e.drain(s); err != nil {
		e.release(s)
		e.fail(s.track, s.frames, err)
		return
	}
	e.release(s)

	e.state = Idle
	e.flag.set(false)
	e.log.Info("track finished", zap.String("track", s.track), zap.Uint64("frames", s.frames))
	e.emit(Event{Kind: Finished, Track: s.track, Frames: s.frames})
}

func (e *Engine) stop() {
	s := e.session
	e.state = Stopping
	e.teardown()

	e.state = Idle
	e.flag.set(false)
	e.log.Info("track stopped", zap.String("track", s.track), zap.Uint64("frames", s.frames))
	e.emit(Event{Kind: Stopped, Track: s.track, Frames: s.frames})
}

func (e *Engine) teardown() {
	if e.session != nil {
		e.release(e.session)
		e.session = nil
	}
}

func (e *Engine) fail(track string, frames uint64, err error) {
	e.state = Idle
	e.flag.set(false)
	e.log.Error("track failed", zap.String("track", track), zap.Uint64("frames", frames), zap.Error(err))
	e.emit(Event{Kind: Failed, Track: track, Frames: frames, Err: err})
}

// release closes sink then decoder without draining.
func (e *Engine) release(s *session) {
	e.closeQuietly("sink", s.sink.Close)
	e.closeQuietly("decoder", s.dec.Close)
}

func (e *Engine) closeQuietly(what string, closeFn func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic on close", zap.String("what", what), zap.Any("panic", r))
		}
	}()
	if err := closeFn(); err != nil {
		e.log.Warn("close failed", zap.String("what", what), zap.Error(err))
	}
}

func (e *Engine) emit(ev Event) {
	if e.notify == nil {
		return
	}
	ev.Time = time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic in notify", zap.Any("panic", r))
		}
	}()
	e.notify(ev)
}

// ======================================================
// Third-party calls, isolated from panics
// ======================================================

func (e *Engine) openDecoder(path string) (dec decode.Decoder, err error) {
	defer func() {
		if r := recover(); r != nil {
			dec, err = nil, &decode.DecodeError{Path: path, Kind: decode.ErrCorrupt, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()
	return e.decoders.Open(path)
}

func (e *Engine) openSink() (sink output.Sink, err error) {
	defer func() {
		if r := recover(); r != nil {
			sink, err = nil, &output.SinkError{Kind: output.ErrDeviceUnavailable, Err: fmt.Errorf("sink panic: %v", r)}
		}
	}()
	return e.sinks.Open(e.rate, e.channels)
}

func (e *Engine) nextFrame(s *session) (f pcm.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &decode.DecodeError{Path: s.track, Kind: decode.ErrCorrupt, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()
	return s.dec.NextFrame()
}

func (e *Engine) write(s *session, f pcm.Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &output.SinkError{Kind: output.ErrDeviceUnavailable, Err: fmt.Errorf("sink panic: %v", r)}
		}
	}()
	return s.sink.Write(f)
}

func (e *Engine) drain(s *session) (err error) {
	d, ok := s.sink.(output.Drainer)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &output.SinkError{Kind: output.ErrDeviceUnavailable, Err: fmt.Errorf("sink panic: %v", r)}
		}
	}()
	return d.Drain()
}
