/*
errors.go - Error types for the book-asset pipeline

ERROR CATEGORIES:
  1. Registry errors - unknown or duplicate system names
  2. Dispatch errors - a system handed a record of another system
  3. State errors - pipeline steps run out of order (translate before hydrate)
  4. Store errors - missing records

All of these are local, deterministic programming or input errors. None is
retryable.

USAGE:
  if errors.Is(err, book.ErrSystemMismatch) {
      // the record was routed to the wrong system
  }
*/
package book

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSystemNotFound is returned when a system name is not registered.
	ErrSystemNotFound = errors.New("depreciation system not found")

	// ErrSystemConflict is returned when registering a name twice.
	ErrSystemConflict = errors.New("depreciation system already registered")

	// ErrSystemMismatch is returned when a translator or stepper receives a
	// record belonging to another system.
	ErrSystemMismatch = errors.New("depreciation system mismatch")

	// ErrInvalidState is returned when a record reaches translate or step
	// with values only hydration may resolve.
	ErrInvalidState = errors.New("book asset not hydrated")

	// ErrInvalidAsset is returned when a record fails system validation.
	ErrInvalidAsset = errors.New("invalid book asset")

	// ErrAssetNotFound is returned by stores for unknown asset names.
	ErrAssetNotFound = errors.New("book asset not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SystemMismatchError names the record and both systems.
type SystemMismatchError struct {
	Asset string
	Want  string
	Got   string
}

func (e *SystemMismatchError) Error() string {
	return fmt.Sprintf("asset %q uses system %q, not %q", e.Asset, e.Got, e.Want)
}

func (e *SystemMismatchError) Unwrap() error {
	return ErrSystemMismatch
}

// SystemNotFoundError names the missing system.
type SystemNotFoundError struct {
	Name string
}

func (e *SystemNotFoundError) Error() string {
	return fmt.Sprintf("depreciation system not found: %q", e.Name)
}

func (e *SystemNotFoundError) Unwrap() error {
	return ErrSystemNotFound
}

// CheckSystem returns a *SystemMismatchError unless a belongs to system.
// Translators and steppers call it first.
func CheckSystem(a BookAsset, system string) error {
	if a.System != system {
		return &SystemMismatchError{Asset: a.Name, Want: system, Got: a.System}
	}
	return nil
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing system or record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSystemNotFound) ||
		errors.Is(err, ErrAssetNotFound)
}

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSystemMismatch) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidAsset)
}
