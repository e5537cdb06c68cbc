/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package container

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"hdxplayer/pkg/spec"
)

var (
	ErrInvalidMagic  = errors.New("invalid volume magic")
	ErrNoTracks      = errors.New("no tracks found in volume (TTOC missing or empty)")
	ErrTrackNotFound = errors.New("track not found in volume")
)

// TrackEntry is one row of the TTOC table. Offset is absolute within the file.
type TrackEntry struct {
	TrackNumber int     `json:"track_number"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist,omitempty"`
	OriginFile  string  `json:"origin_file,omitempty"`
	Offset      uint64  `json:"offset"`
	Size        uint64  `json:"size"`
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint,omitempty"`
}

type ReadSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

type Volume struct {
	Reader     ReadSeekerAt
	AlbumTitle string
	Artist     string
	Publisher  string
	Tracks     []TrackEntry
	Artwork    []byte // PNG, nil when the volume has none
}

// Track looks a track up by its 1-based track number.
func (v *Volume) Track(number int) (TrackEntry, error) {
	for _, t := range v.Tracks {
		if t.TrackNumber == number {
			return t, nil
		}
	}
	return TrackEntry{}, fmt.Errorf("%w: #%d", ErrTrackNotFound, number)
}

// TrackReader returns the packet stream of t.
func (v *Volume) TrackReader(t TrackEntry) *io.SectionReader {
	return io.NewSectionReader(v.Reader, int64(t.Offset), int64(t.Size))
}

func UnpackVolume(r ReadSeekerAt) (*Volume, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	magic := make([]byte, len(spec.VolumeMagicV2))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != spec.VolumeMagicV2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	vol := &Volume{Reader: r}

	for {
		tagBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, tagBuf); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read tag: %w", err)
		}

		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read %s size: %w", tagBuf, err)
		}

		switch tag := string(tagBuf); tag {
		case spec.Album, spec.Artist, spec.Publisher, spec.TableOfCont, spec.Artwork:
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", tag, err)
			}
			switch tag {
			case spec.Album:
				vol.AlbumTitle = string(buf)
			case spec.Artist:
				vol.Artist = string(buf)
			case spec.Publisher:
				vol.Publisher = string(buf)
			case spec.Artwork:
				vol.Artwork = buf
			default:
				if err := json.Unmarshal(buf, &vol.Tracks); err != nil {
					return nil, fmt.Errorf("failed to parse TTOC: %w", err)
				}
			}

		default:
			// AUDI dan tag lain dilewati
			if _, err := r.Seek(int64(n), io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}

	if len(vol.Tracks) == 0 {
		return nil, ErrNoTracks
	}
	for _, t := range vol.Tracks {
		if t.Offset+t.Size > uint64(size) {
			return nil, fmt.Errorf("track #%d exceeds volume size", t.TrackNumber)
		}
	}

	return vol, nil
}

// TrackData is a track to be packed; Offset and Size are filled by PackVolume.
type TrackData struct {
	TrackEntry
	Payload []byte
}

// PackVolume writes an HDXV02 volume: header tags, one AUDI block holding every
// track payload back to back, and the TTOC table last.
func PackVolume(w io.Writer, album, artist, publisher string, tracks []TrackData) error {
	cw := &countingWriter{w: w}

	if _, err := cw.Write([]byte(spec.VolumeMagicV2)); err != nil {
		return err
	}
	for _, tag := range []struct{ name, value string }{
		{spec.Album, album},
		{spec.Artist, artist},
		{spec.Publisher, publisher},
	} {
		if err := writeTag(cw, tag.name, []byte(tag.value)); err != nil {
			return err
		}
	}

	var audioSize uint64
	for _, t := range tracks {
		audioSize += uint64(len(t.Payload))
	}
	if audioSize > uint64(^uint32(0)) {
		return fmt.Errorf("audio block too large: %d bytes", audioSize)
	}
	if err := writeHeader(cw, spec.AudioData, uint32(audioSize)); err != nil {
		return err
	}

	toc := make([]TrackEntry, 0, len(tracks))
	for _, t := range tracks {
		entry := t.TrackEntry
		entry.Offset = cw.n
		entry.Size = uint64(len(t.Payload))
		if _, err := cw.Write(t.Payload); err != nil {
			return err
		}
		toc = append(toc, entry)
	}

	tocJSON, err := json.Marshal(toc)
	if err != nil {
		return err
	}
	return writeTag(cw, spec.TableOfCont, tocJSON)
}

// AppendArtwork adds the cover image after a packed volume.
func AppendArtwork(w io.Writer, png []byte) error {
	if len(png) == 0 {
		return nil
	}
	return writeTag(w, spec.Artwork, png)
}

func writeHeader(w io.Writer, tag string, size uint32) error {
	if _, err := w.Write([]byte(tag)); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, size)
}

func writeTag(w io.Writer, tag string, data []byte) error {
	if err := writeHeader(w, tag, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}
