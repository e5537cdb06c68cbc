/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hdxplayer/internal/codec"
	"hdxplayer/internal/container"
	"hdxplayer/internal/security"
	"hdxplayer/pkg/spec"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var packOpts struct {
	album     string
	artist    string
	publisher string
	password  string
	out       string
	artwork   string
	normalize bool
}

var packCmd = &cobra.Command{
	Use:   "pack <wav|dir>...",
	Short: "Forge 48 kHz stereo WAV files into an encrypted .hdxv volume",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPack,
}

func init() {
	f := packCmd.Flags()
	f.StringVar(&packOpts.album, "album", "", "album title (default: output name)")
	f.StringVar(&packOpts.artist, "artist", "", "album artist")
	f.StringVar(&packOpts.publisher, "publisher", "", "publisher")
	f.StringVar(&packOpts.password, "password", "", "volume password (prompted when empty)")
	f.StringVar(&packOpts.out, "out", "", "output volume path")
	f.StringVar(&packOpts.artwork, "artwork", "", "cover image (jpeg or png), cropped square")
	f.BoolVar(&packOpts.normalize, "normalize", false, "peak-normalize each track before encoding")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	files, err := findWavs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no .wav files found")
	}

	out := volumeName(packOpts.out, packOpts.album)
	album := packOpts.album
	if album == "" {
		album = strings.TrimSuffix(filepath.Base(out), spec.VolumeExt)
	}

	password := packOpts.password
	if password == "" {
		if password, err = askPassword(); err != nil {
			return err
		}
	}
	key := security.AudioKey(password)

	var cover []byte
	if packOpts.artwork != "" {
		if cover, err = loadArtwork(packOpts.artwork); err != nil {
			return err
		}
	}

	fmt.Printf("\n[START] FORGING: %s (%d tracks)\n", album, len(files))
	bar := newProgress(os.Stdout, "FORGING", len(files))

	tracks := make([]container.TrackData, 0, len(files))
	for i, path := range files {
		t, err := encodeFile(path, key, packOpts.normalize)
		if err != nil {
			fmt.Println()
			return err
		}
		t.TrackNumber = i + 1
		t.Artist = packOpts.artist
		tracks = append(tracks, t)
		bar.step(t.Title)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = container.PackVolume(f, album, packOpts.artist, packOpts.publisher, tracks)
	if err == nil {
		err = container.AppendArtwork(f, cover)
	}
	if err != nil {
		f.Close()
		os.Remove(out)
		return fmt.Errorf("pack %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := security.CreateKeyLocker(out, password); err != nil {
		return fmt.Errorf("key locker: %w", err)
	}

	fmt.Printf("[SUCCESS] Volume forged: %s\n", out)
	fmt.Printf("          Key locker:    %s\n", security.LockerPath(out))
	return nil
}

func encodeFile(path string, key []byte, normalize bool) (container.TrackData, error) {
	pcm, err := codec.ReadWavPCM(path)
	if err != nil {
		return container.TrackData{}, fmt.Errorf("%s: %w", path, err)
	}
	if normalize {
		pcm = codec.NormalizePCM(pcm)
	}
	payload, duration, err := codec.EncodeTrack(pcm, key)
	if err != nil {
		return container.TrackData{}, fmt.Errorf("%s: %w", path, err)
	}
	return container.TrackData{
		TrackEntry: container.TrackEntry{
			Title:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			OriginFile:  filepath.Base(path),
			Duration:    duration,
			Fingerprint: codec.Fingerprint(pcm),
		},
		Payload: payload,
	}, nil
}

func loadArtwork(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	png, err := codec.SquareArtwork(f)
	if err != nil {
		return nil, fmt.Errorf("artwork %s: %w", path, err)
	}
	fmt.Printf(" >> Artwork: %s (%d bytes)\n", filepath.Base(path), len(png))
	return png, nil
}

// findWavs expands directories into their .wav files, sorted by name.
// Explicit file arguments keep their order.
func findWavs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func volumeName(out, album string) string {
	if out == "" {
		if album == "" {
			album = "volume"
		}
		out = strings.ReplaceAll(album, " ", "_")
	}
	if !strings.EqualFold(filepath.Ext(out), spec.VolumeExt) {
		out += spec.VolumeExt
	}
	return out
}

func askPassword() (string, error) {
	rl, err := readline.NewEx(&readline.Config{})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	pw, err := rl.ReadPassword("Volume password: ")
	if err != nil {
		return "", err
	}
	if len(pw) == 0 {
		return "", errors.New("empty password")
	}
	return string(pw), nil
}
