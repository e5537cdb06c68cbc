/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package control exposes the engine over a line based Unix socket protocol.
package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"hdxplayer/internal/meter"
	"hdxplayer/internal/player"
	"hdxplayer/pkg/spec"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller is the part of the engine the protocol drives.
type Controller interface {
	EnqueueLoad(path string)
	EnqueueStop()
	IsPlaying() bool
}

// LevelSource reports the current output levels.
type LevelSource interface {
	Snapshot() meter.Levels
}

type conn struct {
	id  string
	nc  net.Conn
	wmu sync.Mutex
}

func (c *conn) send(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.nc.Write([]byte(line + "\n"))
	return err
}

// Server accepts any number of observers; the first connection to issue a
// control command owns playback until it disconnects.
type Server struct {
	ctrl   Controller
	levels LevelSource
	log    *zap.Logger

	controlMu sync.Mutex
	owner     *conn

	stateMu   sync.Mutex
	track     string
	lastEvent string
	lastErr   string

	connMu sync.Mutex
	conns  map[*conn]struct{}

	events    chan player.Event
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

func WithLevels(src LevelSource) Option { return func(s *Server) { s.levels = src } }

// NewServer starts the event dispatcher; call Close to stop it.
func NewServer(ctrl Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:   ctrl,
		log:    zap.NewNop(),
		conns:  make(map[*conn]struct{}),
		events: make(chan player.Event, 64),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("control")

	s.wg.Add(1)
	go s.dispatch()
	return s
}

// ===============================
// Owner lock
// ===============================

func (s *Server) isOwner(c *conn) bool {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	return s.owner == c
}

func (s *Server) claimOwner(c *conn) bool {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	if s.owner == nil {
		s.owner = c
		s.log.Info("control claimed", zap.String("conn", c.id))
		return true
	}
	return s.owner == c
}

// releaseOwner frees control and stops playback when c was the owner.
func (s *Server) releaseOwner(c *conn) {
	s.controlMu.Lock()
	wasOwner := s.owner == c
	if wasOwner {
		s.owner = nil
	}
	s.controlMu.Unlock()

	if wasOwner {
		s.log.Info("control released", zap.String("conn", c.id))
		s.ctrl.EnqueueStop()
	}
}

func (s *Server) currentOwner() *conn {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	return s.owner
}

// ===============================
// Events
// ===============================

// Notify records ev for STATUS and queues it for the owner. It never blocks,
// so it can be the engine's notify callback.
func (s *Server) Notify(ev player.Event) {
	s.stateMu.Lock()
	s.track = ev.Track
	s.lastEvent = ev.Kind.String()
	s.lastErr = ""
	if ev.Err != nil {
		s.lastErr = ev.Err.Error()
	}
	s.stateMu.Unlock()

	select {
	case s.events <- ev:
	default:
		s.log.Warn("event dropped", zap.Stringer("event", ev.Kind), zap.String("track", ev.Track))
	}
}

func (s *Server) dispatch() {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case ev := <-s.events:
			owner := s.currentOwner()
			if owner == nil {
				continue
			}
			j, err := json.Marshal(ev)
			if err != nil {
				s.log.Error("encode event", zap.Error(err))
				continue
			}
			if err := owner.send("EVENT " + string(j)); err != nil {
				s.log.Warn("event write failed", zap.String("conn", owner.id), zap.Error(err))
				owner.nc.Close()
			}
		}
	}
}

// ===============================
// IPC Server
// ===============================

// Listen removes a stale socket file and listens on path.
func Listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	return net.Listen("unix", path)
}

// Serve accepts connections until ctx is done or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
		s.closeConns()
	}()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()))
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn("accept", zap.Error(err))
			continue
		}
		go s.ServeConn(nc)
	}
}

func (s *Server) closeConns() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for c := range s.conns {
		c.nc.Close()
	}
}

// Close stops the dispatcher and drops every connection.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.closeConns()
	})
	s.wg.Wait()
	return nil
}

// ServeConn runs the protocol on nc until it is closed.
func (s *Server) ServeConn(nc net.Conn) {
	c := &conn{id: uuid.NewString(), nc: nc}

	s.connMu.Lock()
	s.conns[c] = struct{}{}
	s.connMu.Unlock()
	s.log.Debug("connected", zap.String("conn", c.id))

	defer func() {
		s.releaseOwner(c)
		s.connMu.Lock()
		delete(s.conns, c)
		s.connMu.Unlock()
		nc.Close()
		s.log.Debug("disconnected", zap.String("conn", c.id))
	}()

	sc := bufio.NewScanner(nc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := s.handle(c, line); err != nil {
			return
		}
	}
}

// handle answers one request line. Only write errors are returned.
func (s *Server) handle(c *conn, line string) error {
	// VERB + raw argument, so paths may contain spaces
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToUpper(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}

	// read-only commands
	switch cmd {
	case "ABOUT":
		return c.send(fmt.Sprintf("%s V.%d.%d", spec.AppName, spec.VersionMajor, spec.VersionMinor))
	case "PING":
		return c.send("Pong")
	case "WHOAMI":
		if s.isOwner(c) {
			return c.send("OWNER")
		}
		return c.send("OBSERVER")
	case "STATUS":
		j, err := json.Marshal(s.status())
		if err != nil {
			return c.send("ERR INTERNAL")
		}
		return c.send(string(j))
	}

	// control commands
	switch cmd {
	case "LOAD", "STOP":
	default:
		return c.send("ERR UNKNOWN")
	}
	if !s.claimOwner(c) {
		return c.send("ERR CONTROL_LOCKED")
	}

	switch cmd {
	case "LOAD":
		if arg == "" {
			return c.send("ERR ARG")
		}
		s.log.Info("load", zap.String("conn", c.id), zap.String("track", arg))
		s.ctrl.EnqueueLoad(arg)
		return c.send("OK")
	default:
		s.log.Info("stop", zap.String("conn", c.id))
		s.ctrl.EnqueueStop()
		return c.send("OK")
	}
}

func (s *Server) status() map[string]interface{} {
	s.stateMu.Lock()
	resp := map[string]interface{}{
		"playing":    s.ctrl.IsPlaying(),
		"track":      s.track,
		"last_event": s.lastEvent,
	}
	if s.lastErr != "" {
		resp["error"] = s.lastErr
	}
	s.stateMu.Unlock()

	if s.levels != nil {
		resp["levels"] = s.levels.Snapshot()
	}
	return resp
}
