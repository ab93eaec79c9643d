package lending

import (
	"errors"
	"fmt"
)

// Failure classes returned by the engine. Errors are wrapped with a reason,
// so match them with errors.Is.
var (
	// ErrNotFound means a referenced item, request or member does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor is not the party allowed to act.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState means the request or item is in the wrong state for
	// the operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation means the input itself is malformed.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means the row changed under a concurrent operation. The
	// caller may retry.
	ErrConflict = errors.New("concurrent modification")
)

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Transient reports whether err is worth retrying by the caller.
func Transient(err error) bool {
	return errors.Is(err, ErrConflict)
}
