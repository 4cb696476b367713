// Package errs carries the error taxonomy shared across the pipeline.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation decisions at package boundaries.
type Kind string

const (
	KindValidation Kind = "validation"
	KindEmbedding  Kind = "embedding"
	KindParse      Kind = "parse"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
)

// Error wraps an underlying error with a Kind and message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with no underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind from a format string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an existing error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsValidation(err error) bool { return IsKind(err, KindValidation) }
func IsEmbedding(err error) bool  { return IsKind(err, KindEmbedding) }
func IsParse(err error) bool      { return IsKind(err, KindParse) }
func IsNotFound(err error) bool   { return IsKind(err, KindNotFound) }
func IsStorage(err error) bool    { return IsKind(err, KindStorage) }
