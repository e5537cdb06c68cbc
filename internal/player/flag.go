/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import "sync"

// PlaybackFlag is the "is playing" bit shared between the engine and its
// callers. Only the engine writes it; the lock is held for a single access.
type PlaybackFlag struct {
	mu      sync.RWMutex
	playing bool
}

func (f *PlaybackFlag) IsPlaying() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.playing
}

func (f *PlaybackFlag) set(v bool) {
	f.mu.Lock()
	f.playing = v
	f.mu.Unlock()
}
