/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package decode

import (
	"io"

	"hdxplayer/internal/pcm"

	"github.com/faiface/beep"
)

// streamDecoder pulls blocks from a beep.Streamer and hands them out one
// frame at a time.
type streamDecoder struct {
	path   string
	source beep.Streamer
	closer io.Closer

	block [][2]float64
	pos   int
	n     int
	err   error // sticky: io.EOF or *DecodeError
}

func (d *streamDecoder) NextFrame() (pcm.Frame, error) {
	if d.pos >= d.n {
		if d.err != nil {
			return pcm.Frame{}, d.err
		}
		if err := d.fill(); err != nil {
			d.err = err
			return pcm.Frame{}, err
		}
	}
	f := pcm.Frame(d.block[d.pos])
	d.pos++
	return f, nil
}

func (d *streamDecoder) fill() error {
	n, ok := d.source.Stream(d.block)
	if n > 0 {
		d.pos, d.n = 0, n
		return nil
	}
	if err := d.source.Err(); err != nil {
		return newError(d.path, ErrCorrupt, err)
	}
	if !ok || n == 0 {
		return io.EOF
	}
	return nil
}

func (d *streamDecoder) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}
