// Package apperr holds the error kinds shared by every bounded context.
// Domain packages wrap one of these so transports can classify failures with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Validation returns an error of kind ErrValidation carrying msg.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Persistence wraps a storage failure so that callers see ErrPersistence while the cause stays inspectable.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// Classified reports whether err already carries one of the known kinds.
func Classified(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPersistence, ErrUnauthorized, ErrForbidden} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
