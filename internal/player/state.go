/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import (
	"encoding/json"
	"time"
)

// State of the engine goroutine. The current track lives in the session.
type State int

const (
	Idle State = iota
	Playing
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// EventKind names a committed transition.
type EventKind int

const (
	Started  EventKind = iota + 1 // a track opened and began streaming
	Finished                      // the track reached its end
	Stopped                       // playback was stopped
	Failed                        // opening or streaming failed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Finished:
		return "finished"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is delivered to the notify callback after every transition. Playing
// is the flag value the transition committed.
type Event struct {
	Kind    EventKind
	Track   string
	Playing bool
	Frames  uint64 // frames written for the track so far
	Err     error
	Time    time.Time
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind    EventKind `json:"event"`
		Track   string    `json:"track,omitempty"`
		Playing bool      `json:"playing"`
		Frames  uint64    `json:"frames"`
		Err     string    `json:"error,omitempty"`
		Time    int64     `json:"ts"`
	}{e.Kind, e.Track, e.Playing, e.Frames, "", e.Time.Unix()}
	if e.Err != nil {
		out.Err = e.Err.Error()
	}
	return json.Marshal(out)
}
