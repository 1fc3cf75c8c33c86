// SPDX-License-Identifier: MPL-2.0

package aggregator

import (
	"errors"
	"fmt"
)

const (
	// KindIO marks failures to open, read, list or write a path.
	KindIO Kind = iota + 1
	// KindParse marks source content that is not a valid YAML document.
	KindParse
)

var (
	// ErrIO is matched by every PathError of kind KindIO.
	ErrIO = errors.New("i/o error")
	// ErrParse is matched by every PathError of kind KindParse.
	ErrParse = errors.New("parse error")
)

type (
	// Kind classifies a PathError.
	Kind int

	// PathError reports the path a pipeline step failed on and why.
	// errors.Is matches both the underlying cause and the sentinel for the
	// error kind (ErrIO or ErrParse).
	PathError struct {
		Kind Kind
		// Op is a short verb phrase such as "read" or "write".
		Op   string
		Path string
		Err  error
	}
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the cause together with the kind sentinel.
func (e *PathError) Unwrap() []error {
	errs := []error{e.Err}
	switch e.Kind {
	case KindIO:
		errs = append(errs, ErrIO)
	case KindParse:
		errs = append(errs, ErrParse)
	}
	return errs
}

func ioError(op, path string, err error) *PathError {
	return &PathError{Kind: KindIO, Op: op, Path: path, Err: err}
}

func parseError(path string, err error) *PathError {
	return &PathError{Kind: KindParse, Op: "parse", Path: path, Err: err}
}
