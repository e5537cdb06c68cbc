/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client [COMMAND [ARG]]",
	Short: "Talk to a running serve over its socket",
	Long: `Without arguments, opens an interactive prompt on the control socket.
With arguments, sends them as one command, prints the reply and exits:

  hdx-player client LOAD ~/music/song.flac
  hdx-player client STATUS`,
	RunE: runClient,
}

func init() {
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Socket, err)
	}
	defer conn.Close()

	if len(args) > 0 {
		return oneShot(conn, strings.Join(args, " "))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "hdx> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("LOAD", readline.PcItemDynamic(func(line string) []string {
				return listFiles(argOf(line))
			})),
			readline.PcItem("STOP"),
			readline.PcItem("STATUS"),
			readline.PcItem("WHOAMI"),
			readline.PcItem("PING"),
			readline.PcItem("ABOUT"),
			readline.PcItem("QUIT"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "Connected to %s\n", cfg.Socket)
	fmt.Fprintln(rl.Stdout(), `Type IPC command, press Enter. "QUIT" to exit`)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			fmt.Fprintln(rl.Stdout(), "RECV:", sc.Text())
		}
		fmt.Fprintln(rl.Stdout(), "SOCKET CLOSED")
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			select {
			case <-closed:
				return nil
			default:
				return err
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			fmt.Fprintln(rl.Stdout(), "Bye.")
			return nil
		}
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
}

// oneShot sends line and prints the first non-event reply.
func oneShot(conn net.Conn, line string) error {
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		reply := sc.Text()
		if strings.HasPrefix(reply, "EVENT ") {
			continue
		}
		fmt.Println(reply)
		if strings.HasPrefix(reply, "ERR ") {
			return errors.New(reply)
		}
		return nil
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}
