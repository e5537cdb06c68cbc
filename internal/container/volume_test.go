/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package container

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestPackUnpackVolume(t *testing.T) {
	tracks := []TrackData{
		{TrackEntry: TrackEntry{TrackNumber: 1, Title: "Intro", Duration: 1.5}, Payload: []byte("first-track")},
		{TrackEntry: TrackEntry{TrackNumber: 2, Title: "Outro", Duration: 2}, Payload: []byte("second")},
	}

	var buf bytes.Buffer
	if err := PackVolume(&buf, "Blue", "Ebiet", "HDX", tracks); err != nil {
		t.Fatalf("PackVolume: %v", err)
	}

	vol, err := UnpackVolume(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("UnpackVolume: %v", err)
	}
	if vol.AlbumTitle != "Blue" || vol.Artist != "Ebiet" || vol.Publisher != "HDX" {
		t.Errorf("header = %q/%q/%q", vol.AlbumTitle, vol.Artist, vol.Publisher)
	}
	if len(vol.Tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(vol.Tracks))
	}

	for _, want := range tracks {
		entry, err := vol.Track(want.TrackNumber)
		if err != nil {
			t.Fatalf("Track(%d): %v", want.TrackNumber, err)
		}
		got, err := io.ReadAll(vol.TrackReader(entry))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want.Payload) {
			t.Errorf("track %d payload = %q, want %q", want.TrackNumber, got, want.Payload)
		}
	}

	if _, err := vol.Track(3); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Track(3) err = %v", err)
	}
	if vol.Artwork != nil {
		t.Errorf("artwork = %d bytes, want none", len(vol.Artwork))
	}
}

func TestAppendArtwork(t *testing.T) {
	var buf bytes.Buffer
	tracks := []TrackData{{TrackEntry: TrackEntry{TrackNumber: 1, Title: "Only"}, Payload: []byte("pcm")}}
	if err := PackVolume(&buf, "Cover", "", "", tracks); err != nil {
		t.Fatal(err)
	}
	if err := AppendArtwork(&buf, []byte("\x89PNG-fake")); err != nil {
		t.Fatal(err)
	}

	vol, err := UnpackVolume(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("UnpackVolume: %v", err)
	}
	if string(vol.Artwork) != "\x89PNG-fake" {
		t.Errorf("artwork = %q", vol.Artwork)
	}
	entry, _ := vol.Track(1)
	if got, _ := io.ReadAll(vol.TrackReader(entry)); string(got) != "pcm" {
		t.Errorf("payload after artwork = %q", got)
	}
}

func TestUnpackVolumeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", []byte("RIFF0000WAVE"), ErrInvalidMagic},
		{"no toc", []byte("HDXV02ALBM\x00\x00\x00\x01x"), ErrNoTracks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnpackVolume(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := UnpackVolume(bytes.NewReader([]byte("HDX"))); err == nil {
		t.Error("expected error for short file")
	}
}
