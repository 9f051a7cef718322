package core

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalid        = errors.New("invalid")
	ErrNotImplemented = errors.New("not implemented")
)

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is ErrConflict. Unique-constraint
// violations from concurrent inserts surface as this.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
