/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package output

import (
	"errors"
	"testing"
	"time"

	"hdxplayer/internal/pcm"
)

const settle = 50 * time.Millisecond

func frame(v float64) pcm.Frame { return pcm.Frame{v, -v} }

func TestSpeakerSinkBackpressure(t *testing.T) {
	s := newSpeakerSink(2, 4)
	for i := 0; i < 8; i++ {
		if err := s.Write(frame(0.1)); err != nil {
			t.Fatal(err)
		}
	}

	// the third block has nowhere to go until the mixer pulls one
	blocked := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			s.Write(frame(0.2))
		}
		close(blocked)
	}()
	select {
	case <-blocked:
		t.Fatal("Write did not block with two blocks queued")
	case <-time.After(settle):
	}

	buf := make([][2]float64, 4)
	if n, ok := s.feed.Stream(buf); n != 4 || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	if buf[0] != [2]float64{0.1, -0.1} {
		t.Errorf("first frame = %v", buf[0])
	}
	select {
	case <-blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("Write stayed blocked after the mixer pulled a block")
	}
}

func TestSpeakerSinkUnderrunPadsSilence(t *testing.T) {
	s := newSpeakerSink(2, 4)
	buf := [][2]float64{{1, 1}, {1, 1}, {1, 1}}
	n, ok := s.feed.Stream(buf)
	if n != 3 || !ok {
		t.Fatalf("Stream = %d, %v; want 3, true", n, ok)
	}
	for i, f := range buf {
		if f != [2]float64{} {
			t.Errorf("frame %d = %v, want silence", i, f)
		}
	}
}

func TestSpeakerSinkMono(t *testing.T) {
	s := newSpeakerSink(1, 2)
	s.Write(pcm.Frame{0.4, 0.2})
	s.Write(pcm.Frame{0, 0})
	buf := make([][2]float64, 2)
	s.feed.Stream(buf)
	if buf[0][0] != buf[0][1] || buf[0][0] < 0.29 || buf[0][0] > 0.31 {
		t.Errorf("mono frame = %v, want both channels 0.3", buf[0])
	}
}

func TestSpeakerSinkDrain(t *testing.T) {
	s := newSpeakerSink(2, 4)
	for i := 0; i < 6; i++ {
		s.Write(frame(0.5))
	}

	drained := make(chan error, 1)
	go func() { drained <- s.Drain() }()

	buf := make([][2]float64, 4)
	if n, ok := s.feed.Stream(buf); n != 4 || !ok {
		t.Fatalf("full block: Stream = %d, %v", n, ok)
	}
	select {
	case <-drained:
		t.Fatal("Drain returned before the tail was played")
	case <-time.After(settle):
	}

	n, _ := s.feed.Stream(buf)
	if n != 2 {
		t.Errorf("partial block: Stream = %d, want 2", n)
	}
	select {
	case err := <-drained:
		if err != nil {
			t.Errorf("Drain: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Drain did not return after the streamer finished")
	}

	if err := s.Write(frame(0.5)); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Write after Drain err = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close after Drain: %v", err)
	}
}

func TestSpeakerSinkCloseMidStream(t *testing.T) {
	s := newSpeakerSink(2, 4)
	for i := 0; i < 8; i++ {
		s.Write(frame(0.5))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	buf := make([][2]float64, 4)
	if n, ok := s.feed.Stream(buf); n != 0 || ok {
		t.Errorf("Stream after Close = %d, %v; want 0, false", n, ok)
	}
	select {
	case <-s.feed.done:
	default:
		t.Error("streamer not finished after Close")
	}
	if err := s.Write(frame(0.5)); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Write after Close err = %v", err)
	}
	if err := s.Drain(); err != nil {
		t.Errorf("Drain after Close: %v", err)
	}
}
