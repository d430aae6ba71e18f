package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two recoverable failure classes at the
// mutation boundary. Both are surfaced to callers as error values and
// leave engine state untouched; they are matchable with errors.Is.
//
// Programming errors (operating on a nil engine, misusing an accessor
// before state is loaded) are not part of this taxonomy and panic.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// Validationf builds a ValidationError-class error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds a NotFoundError-class error.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
