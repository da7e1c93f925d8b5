// Package service implements the claim workflow and user administration on top
// of the persistence layer. Every operation takes the caller's identity
// explicitly and re-checks authorization before it mutates anything.
package service

import (
	"errors"
	"fmt"

	"github.com/erazemk/najdeno/internal/store"
)

// Error kinds. Every failure returned by this package wraps exactly one of
// these, or is an infrastructure error.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

func notFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrForbidden)
}

// storeError classifies a write failure. Stale and conflicting writes mean the
// record moved out of the state the operation was checked against.
func storeError(op string, err error) error {
	if errors.Is(err, store.ErrStale) || errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%s: %v: %w", op, err, ErrInvalidState)
	}
	return fmt.Errorf("%s: %w", op, err)
}
