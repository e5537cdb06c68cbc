/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"

	"hdxplayer/pkg/spec"

	"golang.org/x/image/draw"
)

// SquareArtwork center-crops a JPEG or PNG cover to a square, scales it down
// to at most spec.ArtworkSize and re-encodes it as PNG.
func SquareArtwork(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	size := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, size, size).Add(b.Min).Add(image.Pt((b.Dx()-size)/2, (b.Dy()-size)/2))

	target := min(size, spec.ArtworkSize)
	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
