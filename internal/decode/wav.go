/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package decode

import (
	"errors"
	"fmt"
	"io"

	"hdxplayer/internal/pcm"

	"github.com/faiface/beep"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

func openWav(blockSize int) Backend {
	return func(src Source) (beep.Streamer, beep.Format, error) {
		dec := wav.NewDecoder(src.File)
		if !dec.IsValidFile() {
			return nil, beep.Format{}, errors.New("not a RIFF/WAVE file")
		}
		if dec.WavAudioFormat != wavFormatPCM {
			return nil, beep.Format{}, fmt.Errorf("wav audio format %d is not integer PCM", dec.WavAudioFormat)
		}

		channels := int(dec.NumChans)
		if channels < 1 || channels > 2 {
			return nil, beep.Format{}, fmt.Errorf("wav with %d channels", channels)
		}
		switch dec.BitDepth {
		case 8, 16, 24, 32:
		default:
			return nil, beep.Format{}, fmt.Errorf("wav bit depth %d", dec.BitDepth)
		}

		s := &wavStreamer{
			dec:      dec,
			channels: channels,
			bitDepth: int(dec.BitDepth),
			buf: &audio.IntBuffer{
				Format:         dec.Format(),
				Data:           make([]int, blockSize*channels),
				SourceBitDepth: int(dec.BitDepth),
			},
		}
		format := beep.Format{
			SampleRate:  beep.SampleRate(dec.SampleRate),
			NumChannels: channels,
			Precision:   int(dec.BitDepth) / 8,
		}
		return s, format, nil
	}
}

// wavStreamer adapts a go-audio WAV decoder to beep.Streamer.
type wavStreamer struct {
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	channels int
	bitDepth int

	pos, n int
	read   int // samples consumed so far
	done   bool
	err    error
}

func (s *wavStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.pos >= s.n {
			if s.done {
				return i, i > 0
			}
			n, err := s.dec.PCMBuffer(s.buf)
			if err != nil && err != io.EOF {
				s.err, s.done = err, true
				return i, i > 0
			}
			s.read += n
			if rest := n % s.channels; rest != 0 {
				// a frame cut in half only happens at a truncated data chunk
				n -= rest
				s.err, s.done = io.ErrUnexpectedEOF, true
			}
			if n == 0 {
				if s.err == nil && s.read < s.declared() {
					s.err = io.ErrUnexpectedEOF
				}
				s.done = true
				return i, i > 0
			}
			s.pos, s.n = 0, n
		}

		l := s.sample(s.buf.Data[s.pos])
		r := l
		if s.channels == 2 {
			r = s.sample(s.buf.Data[s.pos+1])
		}
		samples[i] = [2]float64{l, r}
		s.pos += s.channels
	}
	return len(samples), true
}

// declared is the sample count the data chunk header promises, 0 if unknown.
func (s *wavStreamer) declared() int {
	if s.dec.PCMSize <= 0 {
		return 0
	}
	return s.dec.PCMSize / (s.bitDepth / 8)
}

func (s *wavStreamer) sample(v int) float64 {
	if s.bitDepth == 8 {
		v -= 128
	}
	return pcm.FromInt(v, s.bitDepth)
}

func (s *wavStreamer) Err() error { return s.err }
