package scarcity

import (
	"errors"
	"fmt"

	"github.com/xraph/scarcity/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("scarcity: not found")
	ErrAlreadyExists = errors.New("scarcity: already exists")
	ErrInvalidInput  = errors.New("scarcity: invalid input")
	ErrUnauthorized  = errors.New("scarcity: unauthorized")
	ErrConflict      = errors.New("scarcity: concurrent modification")
	ErrOverflow      = types.ErrOverflow

	// Summoner errors
	ErrSummonerNotFound = fmt.Errorf("%w: summoner", ErrNotFound)
	ErrInvalidRecipient = fmt.Errorf("%w: recipient is the zero address", ErrInvalidInput)
	ErrNotOwner         = fmt.Errorf("%w: caller is not owner nor approved", ErrUnauthorized)
	ErrIncorrectOwner   = fmt.Errorf("%w: from is not the owner", ErrUnauthorized)
	ErrApproveToOwner   = fmt.Errorf("%w: approval to current owner", ErrInvalidInput)
	ErrApproveToCaller  = fmt.Errorf("%w: operator approval to caller", ErrInvalidInput)

	// Access errors
	ErrMissingCaller = fmt.Errorf("%w: no caller in context", ErrUnauthorized)
	ErrNotAdmin      = fmt.Errorf("%w: caller is not the admin", ErrUnauthorized)
	ErrNoAdmin       = errors.New("scarcity: no admin configured")

	// Settings errors
	ErrSettingsNotFound = fmt.Errorf("%w: settings", ErrNotFound)

	// Store errors
	ErrStoreNotReady     = errors.New("scarcity: store not ready")
	ErrStoreClosed       = errors.New("scarcity: store is closed")
	ErrTransactionFailed = errors.New("scarcity: transaction failed")
	ErrMigrationFailed   = errors.New("scarcity: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("scarcity: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized returns true if the caller lacked the required privilege.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
