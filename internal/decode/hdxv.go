/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package decode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"hdxplayer/internal/codec"
	"hdxplayer/internal/container"
	"hdxplayer/internal/security"
	"hdxplayer/pkg/spec"

	"github.com/faiface/beep"
	"github.com/hraban/opus"
)

// maxOpusFrame is 120ms at 48kHz, the longest frame opus can emit.
const maxOpusFrame = 5760

// openVolume plays one track of an HDXV02 volume. The password comes from
// the key locker stored next to the volume.
func openVolume(src Source) (beep.Streamer, beep.Format, error) {
	password, err := security.UnlockKeyLocker(security.LockerPath(src.Path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, beep.Format{}, newError(src.Path, ErrNotFound, fmt.Errorf("key locker: %w", err))
		}
		return nil, beep.Format{}, err
	}

	vol, err := container.UnpackVolume(src.File)
	if err != nil {
		return nil, beep.Format{}, err
	}
	track, err := vol.Track(src.Track)
	if err != nil {
		return nil, beep.Format{}, newError(src.Path, ErrNotFound, err)
	}

	dec, err := opus.NewDecoder(spec.OpusRate, spec.OpusChannels)
	if err != nil {
		return nil, beep.Format{}, err
	}

	s := &opusStreamer{
		r:   bufio.NewReader(vol.TrackReader(track)),
		key: security.AudioKey(password),
		dec: dec,
		out: make([]int16, maxOpusFrame*spec.OpusChannels),
	}
	format := beep.Format{SampleRate: spec.OpusRate, NumChannels: spec.OpusChannels, Precision: 2}
	return s, format, nil
}

// ======================================================
// Lazy Opus Streamer
// ======================================================
type opusStreamer struct {
	r      io.Reader
	key    []byte
	dec    *opus.Decoder
	out    []int16
	frames [][2]float64
	buffer [][2]float64
	eof    bool
	err    error
}

func (l *opusStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0

	for filled < len(samples) {
		if len(l.buffer) == 0 {
			if l.eof || l.err != nil {
				break
			}
			if err := l.refill(); err != nil {
				if err == io.EOF {
					l.eof = true
				} else {
					l.err = err
				}
				break
			}
		}

		n := copy(samples[filled:], l.buffer)
		l.buffer = l.buffer[n:]
		filled += n
	}

	return filled, filled > 0
}

// refill decodes the next sealed packet into l.buffer.
func (l *opusStreamer) refill() error {
	sealed, err := codec.ReadPacket(l.r)
	if err != nil {
		return err
	}

	plain, err := security.Decrypt(sealed, l.key)
	if err != nil {
		return fmt.Errorf("packet rejected: %w", err)
	}

	n, err := l.dec.Decode(plain, l.out)
	if err != nil {
		return fmt.Errorf("opus: %w", err)
	}

	l.frames = l.frames[:0]
	for i := 0; i < n; i++ {
		l.frames = append(l.frames, [2]float64{
			float64(l.out[i*2]) / 32768.0,
			float64(l.out[i*2+1]) / 32768.0,
		})
	}
	l.buffer = l.frames
	return nil
}

func (l *opusStreamer) Err() error { return l.err }
