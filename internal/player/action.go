/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

// Action is a command for the engine. The set is closed: Load and Stop.
type Action interface {
	action()
	String() string
}

// Load replaces whatever is playing with the track at Path.
type Load struct {
	Path string
}

// Stop ends playback. It is a no-op while idle.
type Stop struct{}

func (Load) action() {}
func (Stop) action() {}

func (l Load) String() string { return "LOAD " + l.Path }
func (Stop) String() string   { return "STOP" }
