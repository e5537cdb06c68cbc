/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"hdxplayer/internal/control"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the player as a daemon controlled over a Unix socket",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ln, err := control.Listen(a.cfg.Socket)
	if err != nil {
		return err
	}

	srv := control.NewServer(a.engine, control.WithLogger(a.log), control.WithLevels(a.meter))
	defer srv.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-a.events:
				srv.Notify(ev)
			}
		}
	}()

	a.engine.Start(ctx)
	a.log.Info("serving", zap.String("socket", a.cfg.Socket))

	err = srv.Serve(ctx, ln)
	<-a.engine.Done()
	if errors.Is(err, context.Canceled) {
		a.log.Info("shutdown")
		return nil
	}
	return err
}
