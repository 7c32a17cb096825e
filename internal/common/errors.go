package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorStorage marks failures of the durable store. Callers get a generic
	// server error; the wrapped cause is only logged.
	ErrorStorage = errors.New("storage failure")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationKind names the business rule a piece of user input violated.
type ValidationKind string

const (
	MissingUsername  ValidationKind = "missing_username"
	MissingEmail     ValidationKind = "missing_email"
	MissingPassword  ValidationKind = "missing_password"
	PasswordMismatch ValidationKind = "password_mismatch"
	DuplicateAccount ValidationKind = "duplicate_account"
	EmptyTitle       ValidationKind = "empty_title"
	InvalidDueDate   ValidationKind = "invalid_due_date"
	PastDueDate      ValidationKind = "past_due_date"
)

var validationMessages = map[ValidationKind]string{
	MissingUsername:  "username is required",
	MissingEmail:     "email is required",
	MissingPassword:  "password is required",
	PasswordMismatch: "passwords do not match",
	DuplicateAccount: "username or email already registered",
	EmptyTitle:       "title must not be empty",
	InvalidDueDate:   "due date must use the YYYY-MM-DDTHH:MM format",
	PastDueDate:      "due date must not be in the past",
}

// ValidationError reports input that failed a business rule. It never
// implies a state change.
type ValidationError struct {
	Kind ValidationKind
}

// NewValidationError returns a *ValidationError of the given kind.
func NewValidationError(kind ValidationKind) *ValidationError {
	return &ValidationError{Kind: kind}
}

func (e *ValidationError) Error() string {
	if msg, ok := validationMessages[e.Kind]; ok {
		return msg
	}
	return fmt.Sprintf("validation failed: %s", e.Kind)
}

// Is makes errors.Is match two validation errors of the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// ValidationKindOf extracts the kind of a validation error anywhere in err's
// chain.
func ValidationKindOf(err error) (ValidationKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// StorageError wraps a driver error so it matches ErrorStorage.
func StorageError(err error) error {
	return fmt.Errorf("%w: %w", ErrorStorage, err)
}
