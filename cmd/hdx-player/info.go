/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"time"

	"hdxplayer/internal/container"
	"hdxplayer/internal/security"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <volume.hdxv>",
	Short: "Show the album and track table of a volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVolume(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printVolume(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	vol, err := container.UnpackVolume(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(w, "Album:     %s\n", vol.AlbumTitle)
	if vol.Artist != "" {
		fmt.Fprintf(w, "Artist:    %s\n", vol.Artist)
	}
	if vol.Publisher != "" {
		fmt.Fprintf(w, "Publisher: %s\n", vol.Publisher)
	}

	if len(vol.Artwork) > 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(vol.Artwork)); err == nil {
			fmt.Fprintf(w, "Artwork:   %dx%d, %d bytes\n", cfg.Width, cfg.Height, len(vol.Artwork))
		} else {
			fmt.Fprintf(w, "Artwork:   %d bytes (unreadable)\n", len(vol.Artwork))
		}
	}

	locker := security.LockerPath(path)
	if _, err := security.UnlockKeyLocker(locker); err != nil {
		fmt.Fprintf(w, "Locker:    %s (unusable: %v)\n", locker, err)
	} else {
		fmt.Fprintf(w, "Locker:    %s (ok)\n", locker)
	}

	fmt.Fprintf(w, "\n %-3s  %-32s  %8s  %10s  %s\n", "#", "TITLE", "LENGTH", "BYTES", "FINGERPRINT")
	for _, t := range vol.Tracks {
		d := time.Duration(t.Duration * float64(time.Second)).Round(time.Second)
		fmt.Fprintf(w, " %-3d  %-32.32s  %8s  %10d  %s\n", t.TrackNumber, t.Title, d, t.Size, t.Fingerprint)
	}
	return nil
}
