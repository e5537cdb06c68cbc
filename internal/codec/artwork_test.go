/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"hdxplayer/pkg/spec"
)

func TestSquareArtwork(t *testing.T) {
	// 1000x800, left half red and right half blue
	src := image.NewRGBA(image.Rect(0, 0, 1000, 800))
	for y := 0; y < 800; y++ {
		for x := 0; x < 1000; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 500 {
				c = color.RGBA{B: 255, A: 255}
			}
			src.Set(x, y, c)
		}
	}
	var in bytes.Buffer
	if err := jpeg.Encode(&in, src, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}

	out, err := SquareArtwork(&in)
	if err != nil {
		t.Fatalf("SquareArtwork: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("result is not png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != spec.ArtworkSize || b.Dy() != spec.ArtworkSize {
		t.Fatalf("size = %v, want %dx%d", b, spec.ArtworkSize, spec.ArtworkSize)
	}
	if r, _, bl, _ := img.At(10, 300).RGBA(); r < bl {
		t.Error("left edge should stay red")
	}
	if r, _, bl, _ := img.At(spec.ArtworkSize-10, 300).RGBA(); bl < r {
		t.Error("right edge should stay blue")
	}

	small := image.NewRGBA(image.Rect(0, 0, 40, 64))
	in.Reset()
	png.Encode(&in, small)
	out, err = SquareArtwork(&in)
	if err != nil {
		t.Fatal(err)
	}
	cfg, _ := png.DecodeConfig(bytes.NewReader(out))
	if cfg.Width != 40 || cfg.Height != 40 {
		t.Errorf("small cover = %dx%d, want 40x40", cfg.Width, cfg.Height)
	}

	if _, err := SquareArtwork(strings.NewReader("not an image")); err == nil {
		t.Error("garbage accepted")
	}
}
