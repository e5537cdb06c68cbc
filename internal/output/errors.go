/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package output

import (
	"errors"
	"fmt"
)

// Sink error kinds.
var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrFormatRejected    = errors.New("audio format rejected")
)

// SinkError reports a failure of Backend. Kind is ErrDeviceUnavailable or
// ErrFormatRejected.
type SinkError struct {
	Backend string
	Kind    error
	Err     error
}

func (e *SinkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("output %s: %v", e.Backend, e.Kind)
	}
	return fmt.Sprintf("output %s: %v: %v", e.Backend, e.Kind, e.Err)
}

func (e *SinkError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func deviceErr(backend string, err error) *SinkError {
	return &SinkError{Backend: backend, Kind: ErrDeviceUnavailable, Err: err}
}

func checkFormat(backend string, rate, channels int) error {
	if rate <= 0 {
		return &SinkError{Backend: backend, Kind: ErrFormatRejected, Err: fmt.Errorf("sample rate %d", rate)}
	}
	if channels != 1 && channels != 2 {
		return &SinkError{Backend: backend, Kind: ErrFormatRejected, Err: fmt.Errorf("%d channels", channels)}
	}
	return nil
}
