/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package decode

import (
	"errors"
	"fmt"
)

// Decode error kinds.
var (
	ErrNotFound          = errors.New("track not found")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrCorrupt           = errors.New("corrupt audio stream")
)

// DecodeError reports a failure to open or decode Path. Kind is one of
// ErrNotFound, ErrUnsupportedFormat or ErrCorrupt; both Kind and the
// underlying cause match errors.Is.
type DecodeError struct {
	Path string
	Kind error
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("decode %s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(path string, kind, err error) *DecodeError {
	return &DecodeError{Path: path, Kind: kind, Err: err}
}
