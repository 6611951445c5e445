package share

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMyScheme signals a URI outside the share namespace. It is a routing
	// result, not a failure to report to the user.
	ErrNotMyScheme = errors.New("not a share link")
	// ErrMalformedPayload means the token could not be reversed to JSON text.
	ErrMalformedPayload = errors.New("malformed share payload")
	// ErrMalformedStructure means the payload decoded but is not a valid preset.
	ErrMalformedStructure = errors.New("malformed preset structure")
)

// DecodeError describes why a share link could not be decoded.
type DecodeError struct {
	Kind   error
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

// Is matches the error kind, so errors.Is(err, ErrMalformedPayload) works.
func (e *DecodeError) Is(target error) bool {
	return e != nil && e.Kind == target
}

func (e *DecodeError) Unwrap() error { return e.Err }

func notMine(reason string) error {
	return &DecodeError{Kind: ErrNotMyScheme, Reason: reason}
}

func malformedPayload(reason string, err error) error {
	return &DecodeError{Kind: ErrMalformedPayload, Reason: reason, Err: err}
}

func malformedStructure(reason string, err error) error {
	return &DecodeError{Kind: ErrMalformedStructure, Reason: reason, Err: err}
}
