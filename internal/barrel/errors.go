package barrel

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("barrel: participant not found")
	ErrConflict = errors.New("barrel: conflict")

	ErrSessionOpen = fmt.Errorf("%w: session already open", ErrConflict)
	ErrNoSession   = fmt.Errorf("%w: no open session", ErrConflict)
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("barrel: invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
