/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package output

import (
	"errors"
	"os"

	"hdxplayer/internal/pcm"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavSink renders 16-bit PCM to a file as fast as frames arrive. The file is
// finalised on Close, so an interrupted track still leaves a valid WAV.
type wavSink struct {
	file     *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	data     []int
	channels int
	closed   bool
}

func openWav(path string, rate, channels, blockSize int) (*wavSink, error) {
	if err := checkFormat(Wav, rate, channels); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, deviceErr(Wav, err)
	}

	return &wavSink{
		file: f,
		enc:  wav.NewEncoder(f, rate, 16, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: 16,
		},
		data:     make([]int, 0, blockSize*channels),
		channels: channels,
	}, nil
}

func (w *wavSink) Write(f pcm.Frame) error {
	if w.closed {
		return deviceErr(Wav, errors.New("sink closed"))
	}
	if w.channels == 1 {
		w.data = append(w.data, int(pcm.Int16(f.Mono())))
	} else {
		w.data = append(w.data, int(pcm.Int16(f[0])), int(pcm.Int16(f[1])))
	}
	if len(w.data) == cap(w.data) {
		return w.flush()
	}
	return nil
}

func (w *wavSink) flush() error {
	if len(w.data) == 0 {
		return nil
	}
	w.buf.Data = w.data
	err := w.enc.Write(w.buf)
	w.data = w.data[:0]
	if err != nil {
		return deviceErr(Wav, err)
	}
	return nil
}

func (w *wavSink) Drain() error {
	if w.closed {
		return nil
	}
	return w.flush()
}

func (w *wavSink) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	ferr := w.flush()
	eerr := w.enc.Close()
	cerr := w.file.Close()
	if ferr != nil {
		return ferr
	}
	if eerr != nil {
		return deviceErr(Wav, eerr)
	}
	if cerr != nil {
		return deviceErr(Wav, cerr)
	}
	return nil
}
