/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"crypto/sha256"
	"fmt"
	"math/cmplx"

	"hdxplayer/pkg/spec"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	fpWindow = 1024
	fpStride = 512
	// windows whose strongest bin is below this magnitude count as silence
	fpFloor = 1e4
)

// Fingerprint hashes the dominant frequency bin of each window of the left
// channel of interleaved stereo PCM. Equal audio gives equal prints.
func Fingerprint(pcm []int16) string {
	hann := window.Hann(fpWindow)
	buf := make([]float64, fpWindow)
	h := sha256.New()

	frames := len(pcm) / spec.OpusChannels
	for i := 0; i+fpWindow <= frames; i += fpStride {
		for j := range buf {
			buf[j] = float64(pcm[(i+j)*spec.OpusChannels]) * hann[j]
		}
		coeffs := fft.FFTReal(buf)

		peak, bin := 0.0, 0
		for k := 1; k <= fpWindow/2; k++ {
			if m := cmplx.Abs(coeffs[k]); m > peak {
				peak, bin = m, k
			}
		}
		if peak < fpFloor {
			continue
		}
		fmt.Fprintf(h, "%d|%d", i/fpStride, bin)
	}

	return fmt.Sprintf("HRDX-V2-%x", h.Sum(nil)[:12])
}
