/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package output

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hdxplayer/internal/pcm"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// The beep speaker is process wide and keeps the rate it was first
// initialised with.
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate int) error {
	speakerOnce.Do(func() {
		speakerRate = beep.SampleRate(rate)
		speakerErr = speaker.Init(speakerRate, speakerRate.N(100*time.Millisecond))
	})
	if speakerErr != nil {
		return deviceErr(Speaker, speakerErr)
	}
	if int(speakerRate) != rate {
		return &SinkError{Backend: Speaker, Kind: ErrFormatRejected,
			Err: fmt.Errorf("speaker already running at %dHz", speakerRate)}
	}
	return nil
}

// speakerSink batches frames into blocks and hands them to the mixer over a
// two-block channel, so Write blocks once the mixer falls behind.
type speakerSink struct {
	mono      bool
	closed    bool
	blockSize int
	block     [][2]float64
	feed      *blockStreamer
	closeOnce sync.Once
}

func openSpeaker(rate, channels, blockSize int) (*speakerSink, error) {
	if err := checkFormat(Speaker, rate, channels); err != nil {
		return nil, err
	}
	if err := initSpeaker(rate); err != nil {
		return nil, err
	}

	s := newSpeakerSink(channels, blockSize)
	speaker.Play(s.feed)
	return s, nil
}

func newSpeakerSink(channels, blockSize int) *speakerSink {
	return &speakerSink{
		mono:      channels == 1,
		blockSize: blockSize,
		block:     make([][2]float64, 0, blockSize),
		feed: &blockStreamer{
			blocks: make(chan [][2]float64, 2),
			done:   make(chan struct{}),
		},
	}
}

func (s *speakerSink) Write(f pcm.Frame) error {
	if s.closed {
		return deviceErr(Speaker, fmt.Errorf("sink closed"))
	}
	if s.mono {
		m := f.Mono()
		f = pcm.Frame{m, m}
	}
	s.block = append(s.block, f)
	if len(s.block) == s.blockSize {
		s.feed.blocks <- s.block
		s.block = make([][2]float64, 0, s.blockSize)
	}
	return nil
}

// Drain flushes the partial block and waits for the mixer to play it out.
func (s *speakerSink) Drain() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if len(s.block) > 0 {
		s.feed.blocks <- s.block
		s.block = nil
	}
	s.closeOnce.Do(func() { close(s.feed.blocks) })
	<-s.feed.done
	return nil
}

func (s *speakerSink) Close() error {
	s.closed = true
	s.feed.stopped.Store(true)
	s.closeOnce.Do(func() { close(s.feed.blocks) })
	return nil
}

// blockStreamer is the beep.Streamer side of speakerSink. It pads with
// silence when no block is ready.
type blockStreamer struct {
	blocks   chan [][2]float64
	cur      [][2]float64
	stopped  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once
}

func (b *blockStreamer) Stream(samples [][2]float64) (int, bool) {
	if b.stopped.Load() {
		b.finish()
		return 0, false
	}

	for i := 0; i < len(samples); {
		if len(b.cur) == 0 {
			select {
			case blk, ok := <-b.blocks:
				if !ok {
					b.finish()
					return i, i > 0
				}
				b.cur = blk
				continue
			default:
				// underrun
				for ; i < len(samples); i++ {
					samples[i] = [2]float64{}
				}
				return len(samples), true
			}
		}
		n := copy(samples[i:], b.cur)
		b.cur = b.cur[n:]
		i += n
	}
	return len(samples), true
}

func (b *blockStreamer) finish() {
	b.doneOnce.Do(func() { close(b.done) })
}

func (b *blockStreamer) Err() error { return nil }
