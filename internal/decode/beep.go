/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package decode

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
)

// The beep decoders read headers eagerly, so a bad header fails Open and is
// reported as ErrUnsupportedFormat. The returned streamers close the file.

func openMP3(src Source) (beep.Streamer, beep.Format, error) {
	s, format, err := mp3.Decode(src.File)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

func openFLAC(src Source) (beep.Streamer, beep.Format, error) {
	s, format, err := flac.Decode(src.File)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

func openVorbis(src Source) (beep.Streamer, beep.Format, error) {
	s, format, err := vorbis.Decode(src.File)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return s, format, nil
}
