/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"strings"

	"hdxplayer/internal/meter"
)

const barWidth = 30

// levelBar draws the RMS level over the meter floor plus a band strip.
func levelBar(l meter.Levels) string {
	filled := int(float64(barWidth) * (1 - l.RMS/meter.Floor))
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	ticks := []rune(" ▁▂▃▄▅▆▇█")
	var bands strings.Builder
	for _, b := range l.Bands {
		i := int(float64(len(ticks)-1) * (1 - b/meter.Floor))
		if i < 0 {
			i = 0
		}
		if i >= len(ticks) {
			i = len(ticks) - 1
		}
		bands.WriteRune(ticks[i])
	}

	return fmt.Sprintf("[%s] %6.1f dB peak %.2f |%s|", bar, l.RMS, l.Peak, bands.String())
}

// buttonLabel is what a play/stop toggle shows for the given state.
func buttonLabel(playing bool) string {
	if playing {
		return "[ ■ STOP ]"
	}
	return "[ ▶ PLAY ]"
}
