package shared

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an operation that would violate a business rule.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked indicates too many failed login attempts.
	ErrAccountLocked = errors.New("account locked")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// ValidationError reports a missing or malformed field. Handlers render it
// inline next to the originating form input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PostgreSQL error codes that surface as business conflicts.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// MapPgError translates constraint violations into the shared taxonomy.
// Anything else passes through unchanged and is treated as unexpected.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

// UserSafeMessage returns a message suitable for end users. Unexpected
// errors collapse to a generic notice so internals never leak into views.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return "The requested record no longer exists"
	case errors.Is(err, ErrConflict):
		return "The operation conflicts with existing records"
	case errors.Is(err, ErrAccountLocked):
		return "Account locked after repeated failed sign-in attempts"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	default:
		return "Something went wrong, please try again"
	}
}
