/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hdxplayer/pkg/spec"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive player: load, stop, status",
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

const consoleHelp = `Commands:
  load <path>   play a file (TAB completes paths), replacing the current one
  stop          stop playback
  status        show state and levels
  help          this text
  quit          leave`

func runConsole(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	home, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "hdx> ",
		HistoryFile: filepath.Join(home, ".hdx_player_history"),
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("load", readline.PcItemDynamic(func(line string) []string {
				return listFiles(argOf(line))
			})),
			readline.PcItem("stop"),
			readline.PcItem("status"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer func() {
		cancel()
		<-a.engine.Done()
	}()
	a.engine.Start(ctx)

	fmt.Fprintf(rl.Stdout(), "\n%s V.%d.%d\n%s %s\n", spec.AppName, spec.VersionMajor, spec.VersionMinor, developer_title, developer_subtitle)
	fmt.Fprintf(rl.Stdout(), "Type \"help\" for commands. %s\n", buttonLabel(false))

	// engine events -> button label
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-a.events:
				msg := fmt.Sprintf("%s %s", buttonLabel(ev.Playing), ev.Kind)
				if ev.Track != "" {
					msg += ": " + ev.Track
				}
				if ev.Err != nil {
					msg += " (" + ev.Err.Error() + ")"
				}
				fmt.Fprintln(rl.Stdout(), msg)
			}
		}
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)

		switch strings.ToLower(parts[0]) {
		case "load", "play":
			if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
				fmt.Fprintln(rl.Stdout(), "usage: load <path>")
				continue
			}
			a.engine.EnqueueLoad(strings.TrimSpace(parts[1]))
		case "stop":
			a.engine.EnqueueStop()
		case "status":
			fmt.Fprintf(rl.Stdout(), "%s %s\n", buttonLabel(a.engine.IsPlaying()), levelBar(a.meter.Snapshot()))
		case "help", "?":
			fmt.Fprintln(rl.Stdout(), consoleHelp)
		case "quit", "exit":
			fmt.Fprintln(rl.Stdout(), "Bye.")
			return nil
		default:
			fmt.Fprintf(rl.Stdout(), "unknown command %q, try help\n", parts[0])
		}
	}
}

// argOf strips the verb from a completion line.
func argOf(line string) string {
	line = strings.TrimLeft(line, " ")
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return strings.TrimLeft(line[i+1:], " ")
	}
	return ""
}

// listFiles completes prefix against the entries of its directory.
func listFiles(prefix string) []string {
	dir, base := filepath.Split(prefix)
	lookup := dir
	if lookup == "" {
		lookup = "."
	}
	entries, _ := os.ReadDir(lookup)

	var names []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), base) {
			continue
		}
		name := dir + e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		names = append(names, name)
	}
	return names
}
