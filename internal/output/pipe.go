/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package output

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"hdxplayer/internal/pcm"
)

var (
	ErrNoPipePlayer = errors.New("no raw PCM player found (pacat, pw-cat, aplay, play, ffplay)")
	ErrDrainTimeout = errors.New("player did not finish in time")
)

// drainGrace covers the OS pipe buffer and the player's own latency.
const drainGrace = 3 * time.Second

// pipePlayer is a program that plays raw s16le PCM from stdin.
type pipePlayer struct {
	Name string
	Args func(rate, channels string) []string
}

// Priority: pacat > pw-cat > aplay > play (sox) > ffplay
var pipePlayers = []pipePlayer{
	{"pacat", func(r, c string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=" + c, "--latency-msec=50", "--playback"}
	}},
	{"pw-cat", func(r, c string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=" + c, "--latency=50ms", "-"}
	}},
	{"aplay", func(r, c string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", c, "-q"}
	}},
	{"play", func(r, c string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", c, "-r", r, "-", "-d", "-q"}
	}},
	{"ffplay", func(r, c string) []string {
		return []string{"-nodisp", "-autoexit", "-f", "s16le", "-ac", c, "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet"}
	}},
}

// DetectPipePlayer returns the first installed raw PCM player as argv.
func DetectPipePlayer(rate, channels int) ([]string, error) {
	r, c := strconv.Itoa(rate), strconv.Itoa(channels)
	for _, p := range pipePlayers {
		if path, err := exec.LookPath(p.Name); err == nil {
			return append([]string{path}, p.Args(r, c)...), nil
		}
	}
	return nil, ErrNoPipePlayer
}

// pipeSink streams interleaved s16le into a child process.
type pipeSink struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	w        *bufio.Writer
	channels int
	scratch  [4]byte
	done     bool

	drainTimeout time.Duration
}

func openPipe(command string, rate, channels, blockSize int) (*pipeSink, error) {
	if err := checkFormat(Pipe, rate, channels); err != nil {
		return nil, err
	}

	argv := strings.Fields(command)
	if len(argv) == 0 {
		var err error
		if argv, err = DetectPipePlayer(rate, channels); err != nil {
			return nil, deviceErr(Pipe, err)
		}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, deviceErr(Pipe, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, deviceErr(Pipe, err)
	}

	return &pipeSink{
		cmd:      cmd,
		stdin:    stdin,
		w:        bufio.NewWriterSize(stdin, blockSize*channels*2),
		channels: channels,

		drainTimeout: time.Duration(blockSize)*time.Second/time.Duration(rate) + drainGrace,
	}, nil
}

func (p *pipeSink) Write(f pcm.Frame) error {
	if p.done {
		return deviceErr(Pipe, errors.New("sink closed"))
	}
	b := p.scratch[:0]
	if p.channels == 1 {
		b = binary.LittleEndian.AppendUint16(b, uint16(pcm.Int16(f.Mono())))
	} else {
		b = binary.LittleEndian.AppendUint16(b, uint16(pcm.Int16(f[0])))
		b = binary.LittleEndian.AppendUint16(b, uint16(pcm.Int16(f[1])))
	}
	if _, err := p.w.Write(b); err != nil {
		return deviceErr(Pipe, err)
	}
	return nil
}

// Drain flushes the buffer, closes stdin and waits for the player to exit.
// A player that is still running after drainTimeout is killed.
func (p *pipeSink) Drain() error {
	if p.done {
		return nil
	}
	p.done = true
	ferr := p.w.Flush()
	p.stdin.Close()

	exited := make(chan error, 1)
	go func() { exited <- p.cmd.Wait() }()

	var werr error
	select {
	case werr = <-exited:
	case <-time.After(p.drainTimeout):
		p.cmd.Process.Kill()
		<-exited
		return deviceErr(Pipe, ErrDrainTimeout)
	}
	if ferr != nil {
		return deviceErr(Pipe, ferr)
	}
	if werr != nil {
		return deviceErr(Pipe, werr)
	}
	return nil
}

// Close stops the player immediately, dropping whatever it has buffered.
func (p *pipeSink) Close() error {
	if p.done {
		return nil
	}
	p.done = true
	p.stdin.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd.Wait()
	return nil
}
