package domain

import "errors"

// Sentinel errors shared by services and repositories.
var (
	ErrNotFound           = errors.New("not found")
	ErrSlotUnavailable    = errors.New("slot is not available for booking")
	ErrSlotNotDeletable   = errors.New("only available slots can be deleted")
	ErrInvalidTransition  = errors.New("invalid slot status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries a user-facing message for input rejected by business rules.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
