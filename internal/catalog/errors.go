package catalog

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary. All of them
	// are transient from the caller's point of view; retrying is the
	// caller's decision.
	ErrUnavailable = errors.New("catalog: host unreachable or transport failure")
	ErrBadStatus   = errors.New("catalog: unexpected HTTP status")
	ErrBadResponse = errors.New("catalog: invalid response format or malformed data")
	ErrTimeout     = errors.New("catalog: request timed out")

	// ErrNoVideoFiles marks a catalog video without a single playable file.
	ErrNoVideoFiles = errors.New("catalog: video has no files")
)

// Error wraps the sentinel errors with request context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("catalog: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}
