package models

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the failures reported to callers.
type ErrorKind int

const (
	KindIOFailure ErrorKind = iota + 1
	KindUnsupportedFormat
	KindDefinitionParseFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindIOFailure:
		return "io failure"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindDefinitionParseFailure:
		return "definition parse failure"
	default:
		return "unknown error"
	}
}

// Error is a load failure with its kind and the path involved.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error.
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var target *Error
	if !errors.As(err, &target) {
		return false
	}
	return target.Kind == kind
}
