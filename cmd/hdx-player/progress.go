/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const progressWidth = 30

// progress draws a single-line bar that is redrawn in place.
type progress struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	total   int
	current int
}

func newProgress(w io.Writer, label string, total int) *progress {
	return &progress{w: w, label: label, total: total}
}

func (p *progress) step(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.draw(name)
}

func (p *progress) draw(name string) {
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.current) / float64(p.total)
	}
	filled := int(progressWidth * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled)

	fmt.Fprintf(p.w, "\r [%s] [%s] %3d%% (%d/%d) %s", p.label, bar, int(percent*100), p.current, p.total, name)
	if p.current >= p.total {
		fmt.Fprintln(p.w)
	}
}
