package schema

import (
	"errors"
	"fmt"
)

// ErrMismatch is the sentinel all codec shape violations wrap. Callers can
// test for it with errors.Is regardless of the specific mismatch.
var ErrMismatch = errors.New("schema mismatch")

// MismatchError reports where in the schema tree an encode or decode
// violated the declared shape.
type MismatchError struct {
	Path   string
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("schema mismatch at %s: %s", e.Path, e.Reason)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

func mismatchf(path, format string, args ...any) error {
	return &MismatchError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
