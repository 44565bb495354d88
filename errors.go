package beatstore

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("beatstore: not found")
	ErrAlreadyExists = errors.New("beatstore: already exists")
	ErrInvalidInput  = errors.New("beatstore: invalid input")
	ErrUnauthorized  = errors.New("beatstore: unauthorized")
	ErrForbidden     = errors.New("beatstore: forbidden")

	// Catalog errors
	ErrBeatNotFound    = errors.New("beatstore: beat not found")
	ErrBeatUnavailable = errors.New("beatstore: beat no longer available")
	ErrExclusiveSold   = errors.New("beatstore: beat already sold exclusively")
	ErrGenreNotFound   = errors.New("beatstore: genre not found")
	ErrGenreExists     = errors.New("beatstore: genre already exists")

	// Ledger errors
	ErrSaleNotFound = errors.New("beatstore: sale not found")

	// Entitlement errors
	ErrNotEntitled  = errors.New("beatstore: no entitlement for file")
	ErrInvalidTier  = errors.New("beatstore: invalid license tier")
	ErrFileNotFound = errors.New("beatstore: file not found")

	// Payment errors
	ErrPaymentIncomplete     = errors.New("beatstore: payment not completed")
	ErrOrderNotFound         = errors.New("beatstore: pending order not found")
	ErrOrderAlreadyCaptured  = errors.New("beatstore: order already captured")
	ErrProviderNotConfigured = errors.New("beatstore: payment provider not configured")
	ErrProviderUnavailable   = errors.New("beatstore: payment provider unavailable")

	// Cart errors
	ErrCartEmpty = errors.New("beatstore: cart is empty")

	// Account errors
	ErrAccountNotFound   = errors.New("beatstore: account not found")
	ErrAccountExists     = errors.New("beatstore: account already exists")
	ErrBadCredentials    = errors.New("beatstore: invalid email or password")
	ErrAccountUnverified = errors.New("beatstore: account not verified")
	ErrTokenExpired      = errors.New("beatstore: token expired")
	ErrTokenInvalid      = errors.New("beatstore: token invalid")
	ErrCodeInvalid       = errors.New("beatstore: verification code invalid")
	ErrGoogleAccount     = errors.New("beatstore: account uses google sign-in")

	// Store errors
	ErrStoreNotReady   = errors.New("beatstore: store not ready")
	ErrStoreClosed     = errors.New("beatstore: store is closed")
	ErrMigrationFailed = errors.New("beatstore: migration failed")

	// Worker errors
	ErrPlayBufferFull = errors.New("beatstore: play buffer full")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("beatstore: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "beatstore: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("beatstore: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBeatNotFound) ||
		errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrGenreNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrFileNotFound)
}

// IsDenied returns true if the error is an authorization failure. Denials
// surface before existence checks at the file gate, so callers map these to
// forbidden responses without consulting IsNotFound first.
func IsDenied(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotEntitled)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPlayBufferFull) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrProviderUnavailable)
}
