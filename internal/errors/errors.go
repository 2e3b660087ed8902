package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrUnsupportedURL   = errors.New("unsupported URL scheme")
	ErrRequestTimeout   = errors.New("request timed out")
	ErrConnectionFailed = errors.New("connection failed")
	ErrNoURL            = errors.New("no URL to send")
)

// Kind separates failures caused by the user's input from everything else.
type Kind int

const (
	KindUnknown Kind = iota // wraps any lower level failure
	KindClient              // bad URL, bad scheme
)

// Error is the error type carried by failed sends back into the reducer.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindClient:
		return "Interfere error: " + e.Msg
	default:
		return "Unknown error: " + e.Msg
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Unknown wraps err, keeping its message.
func Unknown(err error) *Error {
	return &Error{Kind: KindUnknown, Msg: err.Error(), Err: err}
}

// Client builds a client error around one of the sentinels.
func Client(sentinel error, format string, args ...any) *Error {
	return &Error{Kind: KindClient, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

// KindOf reports the Kind of err, KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
