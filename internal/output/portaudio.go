/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package output

import (
	"errors"

	"hdxplayer/internal/pcm"

	"github.com/gordonklaus/portaudio"
)

// portAudioSink fills an interleaved float32 block and hands it to a blocking
// PortAudio stream once full.
type portAudioSink struct {
	stream   *portaudio.Stream
	buf      []float32
	pos      int
	channels int
	closed   bool
}

func openPortAudio(rate, channels, blockSize int) (*portAudioSink, error) {
	if err := checkFormat(PortAudio, rate, channels); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, deviceErr(PortAudio, err)
	}

	p := &portAudioSink{
		buf:      make([]float32, blockSize*channels),
		channels: channels,
	}
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(rate), blockSize, p.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, &SinkError{Backend: PortAudio, Kind: ErrFormatRejected, Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, deviceErr(PortAudio, err)
	}
	p.stream = stream
	return p, nil
}

func (p *portAudioSink) Write(f pcm.Frame) error {
	if p.closed {
		return deviceErr(PortAudio, errors.New("sink closed"))
	}
	if p.channels == 1 {
		p.buf[p.pos] = float32(f.Mono())
	} else {
		p.buf[p.pos] = float32(f[0])
		p.buf[p.pos+1] = float32(f[1])
	}
	p.pos += p.channels
	if p.pos == len(p.buf) {
		return p.flush()
	}
	return nil
}

func (p *portAudioSink) flush() error {
	p.pos = 0
	if err := p.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
		return deviceErr(PortAudio, err)
	}
	return nil
}

// Drain pads the partial block with silence, writes it and lets the stream
// play out.
func (p *portAudioSink) Drain() error {
	if p.closed || p.pos == 0 {
		return nil
	}
	for i := p.pos; i < len(p.buf); i++ {
		p.buf[i] = 0
	}
	if err := p.flush(); err != nil {
		return err
	}
	if err := p.stream.Stop(); err != nil {
		return deviceErr(PortAudio, err)
	}
	return nil
}

func (p *portAudioSink) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.stream.Close()
	portaudio.Terminate()
	if err != nil {
		return deviceErr(PortAudio, err)
	}
	return nil
}
