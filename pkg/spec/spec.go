/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package spec

var (
	// Masing-masing 64 karakter random
	r1 = "x8A2bN9mQpL5vWcE1zY7uI0oK4jH3gD6fS9dS8aA7qP6wO5eI4rU3tY2yT1xR0bV9"
	r2 = "M1nB2vC3xC4zZ5lK6jJ7hH8gG9fF0dD1sS2aA3pP4oO5iI6uU7yY8tT9rR0eE1wW2"
	r3 = "Q9qW8eE7rR6tT5yY4uU3iI2oO1pP0aA1sS2dD3fF4gG5hH6jJ7kK8lL9zZ0xX1cC2"

	// MasterBfKey locks the per-volume password inside the _keys.dat file.
	MasterBfKey = r1 + r2 + r3
)

const (
	// === IDENTITY & VERSIONING ===
	AppName      = "HDX-Player"
	VersionMajor = 1
	VersionMinor = 0

	// === PLAYBACK ENGINE ===
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	// BufferSize is the number of frames a sink holds before Write blocks,
	// and the block size decoders pull from their source.
	BufferSize = 1000
	// MeterWindow is the number of frames per level-meter analysis window.
	MeterWindow = 1024

	// === MAGIC NUMBERS (HDX2 VOLUME) ===
	VolumeMagicV2 = "HDXV02"
	BfKeyMagicV2  = "HRDXBF02"
	VolumeExt     = ".hdxv"
	KeyLockerExt  = "_keys.dat"

	// === SECURITY & OPUS SPECS ===
	Salt         = "SALT"
	KDFRounds    = 4096
	OpusRate     = 48000
	OpusChannels = 2
	FrameSize    = 20 // ms per opus packet
	MaxPacket    = 1500

	// === TLV TAGS ===
	Album       = "ALBM"
	Artist      = "ARTI"
	Publisher   = "PUBL"
	AudioData   = "AUDI"
	TableOfCont = "TTOC"
	Artwork     = "ARTW"

	ArtworkSize = 600 // max edge of the square cover, px
)

// OpusFrameSamples returns samples per channel in one opus packet.
func OpusFrameSamples() int {
	return OpusRate * FrameSize / 1000
}
