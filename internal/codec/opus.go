/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hdxplayer/internal/security"
	"hdxplayer/pkg/spec"

	"github.com/go-audio/wav"
	"github.com/hraban/opus"
)

var ErrNotHDXWav = errors.New("hanya mendukung format .wav 48kHz stereo 16-bit")

// ReadWavPCM loads an interleaved 48 kHz stereo 16-bit WAV file.
func ReadWavPCM(inputPath string) ([]int16, error) {
	if strings.ToLower(filepath.Ext(inputPath)) != ".wav" {
		return nil, ErrNotHDXWav
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", inputPath, ErrNotHDXWav)
	}
	if int(dec.SampleRate) != spec.OpusRate || int(dec.NumChans) != spec.OpusChannels || dec.BitDepth != 16 {
		return nil, fmt.Errorf("%s is %dHz/%dch/%dbit: %w", inputPath, dec.SampleRate, dec.NumChans, dec.BitDepth, ErrNotHDXWav)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	pcmData := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		pcmData[i] = int16(v)
	}
	return pcmData, nil
}

// EncodeTrack turns interleaved stereo PCM into a volume track payload: a run
// of [uint16 len][AES-GCM sealed opus packet] records. The returned duration
// is in seconds.
func EncodeTrack(pcm []int16, key []byte) ([]byte, float64, error) {
	frames, err := EncodeRawToOpus(pcm, spec.OpusRate)
	if err != nil {
		return nil, 0, err
	}

	var payload []byte
	for _, frame := range frames {
		sealed, err := security.Encrypt(frame, key)
		if err != nil {
			return nil, 0, err
		}
		payload = binary.BigEndian.AppendUint16(payload, uint16(len(sealed)))
		payload = append(payload, sealed...)
	}

	duration := float64(len(pcm)) / float64(spec.OpusRate) / float64(spec.OpusChannels)
	return payload, duration, nil
}

// ReadPacket reads one sealed packet record. It returns io.EOF only when r
// ends exactly on a record boundary.
func ReadPacket(r io.Reader) ([]byte, error) {
	var sz uint16
	if err := binary.Read(r, binary.BigEndian, &sz); err != nil {
		return nil, err
	}
	sealed := make([]byte, sz)
	if _, err := io.ReadFull(r, sealed); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return sealed, nil
}

func EncodeRawToOpus(pcm []int16, rate int) ([][]byte, error) {
	enc, err := opus.NewEncoder(rate, spec.OpusChannels, opus.AppAudio)
	if err != nil {
		return nil, err
	}

	frameSize := rate * spec.FrameSize / 1000
	sampleSize := frameSize * spec.OpusChannels
	var frames [][]byte

	// Pre-alokasi buffer untuk satu frame agar tidak alokasi di dalam loop
	tmpData := make([]byte, spec.MaxPacket)

	for i := 0; i < len(pcm); i += sampleSize {
		end := i + sampleSize
		var chunk []int16
		if end > len(pcm) {
			chunk = make([]int16, sampleSize)
			copy(chunk, pcm[i:])
		} else {
			chunk = pcm[i:end]
		}

		n, err := enc.Encode(chunk, tmpData)
		if err != nil {
			return nil, err
		}

		frame := make([]byte, n)
		copy(frame, tmpData[:n])
		frames = append(frames, frame)
	}
	return frames, nil
}

// NormalizePCM melakukan Peak Normalization
func NormalizePCM(samples []int16) []int16 {
	var max int
	for _, s := range samples {
		absS := int(s)
		if absS < 0 {
			absS = -absS
		}
		if absS > max {
			max = absS
		}
	}
	if max == 0 {
		return samples
	}

	ratio := 32760.0 / float64(max)
	for i := range samples {
		samples[i] = int16(float64(samples[i]) * ratio)
	}
	return samples
}
