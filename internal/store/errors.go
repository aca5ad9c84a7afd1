package store

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the Store matches exactly one of
// ErrInvalidPath, ErrNotFound or ErrIO under errors.Is.
var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotFound    = errors.New("not found")
	ErrIO          = errors.New("io error")

	// ErrClosed is wrapped (together with ErrIO) by mutations submitted
	// after Close.
	ErrClosed = errors.New("store closed")
)

// PathError records a failed store operation on a named document.
type PathError struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Detail returns the underlying cause text, without the kind.
func (e *PathError) Detail() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

func invalidPath(op, name string) error {
	return &PathError{Op: op, Name: name, Kind: ErrInvalidPath}
}

func ioError(op, name string, err error) error {
	return &PathError{Op: op, Name: name, Kind: ErrIO, Err: err}
}

func notFound(op, name string, err error) error {
	return &PathError{Op: op, Name: name, Kind: ErrNotFound, Err: err}
}
