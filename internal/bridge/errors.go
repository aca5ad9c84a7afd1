package bridge

import (
	"errors"
	"strings"

	"github.com/abhisek/qbank/internal/store"
)

// Code is the wire error taxonomy. The wire form is "code" or
// "code:detail".
type Code string

const (
	CodeUnknownAction  Code = "unknownAction"
	CodeMissingField   Code = "missingField"
	CodeInvalidPayload Code = "invalidPayload"
	CodeInvalidPath    Code = "invalidPath"
	CodeNotFound       Code = "notFound"
	CodeIO             Code = "ioError"
	CodeCancelled      Code = "cancelled"
	CodeInvalidMessage Code = "invalidMessage"
)

var knownCodes = []Code{
	CodeUnknownAction, CodeMissingField, CodeInvalidPayload, CodeInvalidPath,
	CodeNotFound, CodeIO, CodeCancelled, CodeInvalidMessage,
}

// Error is a failed bridge call. Host side it may carry the cause in Err;
// after crossing the wire only Code and Detail survive. Messages that do
// not start with a known code (such as scheduler failure pushes) have an
// empty Code and the full text in Detail.
type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Code == "":
		return e.Detail
	case e.Detail == "":
		return string(e.Code)
	}
	return string(e.Code) + ":" + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, and by detail when target has one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Detail == "" || t.Detail == e.Detail)
}

// Sentinels for errors.Is.
var (
	ErrCancelled      = &Error{Code: CodeCancelled}
	ErrUnknownAction  = &Error{Code: CodeUnknownAction}
	ErrInvalidPath    = &Error{Code: CodeInvalidPath}
	ErrNotFound       = &Error{Code: CodeNotFound}
	ErrInvalidMessage = &Error{Code: CodeInvalidMessage}

	// ErrClosed settles calls still pending when the client shuts down.
	ErrClosed = errors.New("bridge closed")
)

// IsCancelled reports whether err is a dismissed dialog, which callers
// should not surface as a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// ParseError turns a wire error string back into an *Error.
func ParseError(s string) *Error {
	for _, c := range knownCodes {
		if s == string(c) {
			return &Error{Code: c}
		}
		if rest, ok := strings.CutPrefix(s, string(c)+":"); ok {
			return &Error{Code: c, Detail: rest}
		}
	}
	return &Error{Detail: s}
}

func missingField(name string) *Error {
	return &Error{Code: CodeMissingField, Detail: name}
}

func invalidPayload(detail string) *Error {
	return &Error{Code: CodeInvalidPayload, Detail: strings.TrimPrefix(detail, "json: ")}
}

// toError maps host-side failures onto the wire taxonomy.
func toError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}

	var pe *store.PathError
	switch {
	case errors.Is(err, store.ErrInvalidPath):
		return &Error{Code: CodeInvalidPath, Err: err}
	case errors.Is(err, store.ErrNotFound):
		return &Error{Code: CodeNotFound, Err: err}
	case errors.As(err, &pe):
		return &Error{Code: CodeIO, Detail: pe.Detail(), Err: err}
	}
	return &Error{Code: CodeIO, Detail: err.Error(), Err: err}
}
