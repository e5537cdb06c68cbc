/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package decode turns audio files into a lazy sequence of PCM frames.
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"hdxplayer/internal/pcm"
	"hdxplayer/pkg/spec"

	"github.com/faiface/beep"
)

// Decoder yields the frames of one track. The sequence is finite and cannot
// be restarted: NextFrame returns io.EOF once the track is exhausted and a
// *DecodeError of kind ErrCorrupt if the stream breaks mid-way.
type Decoder interface {
	NextFrame() (pcm.Frame, error)
	Close() error
}

// Opener opens a Decoder for a file path.
type Opener interface {
	Open(path string) (Decoder, error)
}

// Source is an opened input file handed to a Backend.
type Source struct {
	Path  string
	Track int // 1-based track inside a volume
	File  *os.File
}

// Backend decodes one container/codec family into a beep stream. Returned
// errors that are not a *DecodeError are reported as ErrUnsupportedFormat.
type Backend func(src Source) (beep.Streamer, beep.Format, error)

// Registry picks a Backend by file extension and delivers frames at a fixed
// sample rate, resampling where the source rate differs.
type Registry struct {
	sampleRate beep.SampleRate
	blockSize  int
	backends   map[string]Backend
}

// NewRegistry returns a Registry with every built-in backend registered.
func NewRegistry(sampleRate, blockSize int) *Registry {
	if sampleRate <= 0 {
		sampleRate = spec.DefaultSampleRate
	}
	if blockSize <= 0 {
		blockSize = spec.BufferSize
	}
	r := &Registry{
		sampleRate: beep.SampleRate(sampleRate),
		blockSize:  blockSize,
		backends:   make(map[string]Backend),
	}
	r.Register(".mp3", openMP3)
	r.Register(".flac", openFLAC)
	r.Register(".ogg", openVorbis)
	r.Register(".oga", openVorbis)
	r.Register(".wav", openWav(blockSize))
	r.Register(spec.VolumeExt, openVolume)
	return r
}

// Register binds ext (with leading dot, any case) to b.
func (r *Registry) Register(ext string, b Backend) {
	r.backends[strings.ToLower(ext)] = b
}

// Extensions lists the registered extensions in order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.backends))
	for ext := range r.backends {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open validates path and prepares its decoder. No frame is decoded yet.
// Volume tracks are addressed as "album.hdxv#3"; a bare volume path plays
// track 1.
func (r *Registry) Open(path string) (Decoder, error) {
	file, track, err := splitTrack(path)
	if err != nil {
		return nil, newError(path, ErrNotFound, err)
	}

	info, err := os.Stat(file)
	if err != nil {
		return nil, newError(path, ErrNotFound, err)
	}
	if info.IsDir() {
		return nil, newError(path, ErrNotFound, errors.New("is a directory"))
	}

	ext := strings.ToLower(filepath.Ext(file))
	backend, ok := r.backends[ext]
	if !ok {
		return nil, newError(path, ErrUnsupportedFormat, fmt.Errorf("no decoder for %q", ext))
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, newError(path, ErrNotFound, err)
	}

	stream, format, err := backend(Source{Path: file, Track: track, File: f})
	if err != nil {
		f.Close()
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
			return nil, de
		}
		return nil, newError(path, ErrUnsupportedFormat, err)
	}

	var closer io.Closer = f
	if c, ok := stream.(io.Closer); ok {
		closer = multiCloser{c, f}
	}
	if format.SampleRate != r.sampleRate {
		stream = beep.Resample(4, format.SampleRate, r.sampleRate, stream)
	}

	return &streamDecoder{
		path:   path,
		source: stream,
		closer: closer,
		block:  make([][2]float64, r.blockSize),
	}, nil
}

func splitTrack(path string) (string, int, error) {
	i := strings.LastIndex(path, "#")
	if i < 0 || !strings.EqualFold(filepath.Ext(path[:i]), spec.VolumeExt) {
		return path, 1, nil
	}
	n, err := strconv.Atoi(path[i+1:])
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("bad track number %q", path[i+1:])
	}
	return path[:i], n, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) && first == nil {
			first = err
		}
	}
	return first
}
