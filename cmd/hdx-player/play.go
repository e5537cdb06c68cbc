/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hdxplayer/internal/decode"
	"hdxplayer/internal/player"

	"github.com/spf13/cobra"
)

var playMeter bool

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Play one file until it ends",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Long = fmt.Sprintf("Play one audio file (%s) and exit when it ends.\nVolume tracks are addressed as album.hdxv#3.",
		strings.Join(decode.NewRegistry(0, 0).Extensions(), " "))
	playCmd.Flags().BoolVar(&playMeter, "meter", false, "draw a level meter while playing")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.engine.Start(ctx)
	a.engine.EnqueueLoad(args[0])

	var tick <-chan time.Time
	if playMeter {
		t := time.NewTicker(200 * time.Millisecond)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			<-a.engine.Done()
			fmt.Println("\nStopped.")
			return nil

		case <-tick:
			fmt.Printf("\r %s", levelBar(a.meter.Snapshot()))

		case ev := <-a.events:
			switch ev.Kind {
			case player.Started:
				fmt.Printf("Playing: %s\n", ev.Track)
			case player.Finished:
				if playMeter {
					fmt.Println()
				}
				fmt.Printf("Done: %s (%.1fs)\n", ev.Track, float64(ev.Frames)/float64(a.cfg.SampleRate))
				return nil
			case player.Failed:
				return ev.Err
			}
		}
	}
}
