package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrFileNotFound indicates a manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrInvalidFormat indicates a manifest file could not be parsed
	ErrInvalidFormat = errors.New("invalid manifest format")

	// ErrUnsupportedExt indicates an unsupported manifest file extension
	ErrUnsupportedExt = errors.New("unsupported file extension")

	// ErrNotMapping indicates a manifest document whose root is not a mapping
	ErrNotMapping = errors.New("manifest root must be a mapping")

	// ErrUnknownValidator indicates a validator name with no registration
	ErrUnknownValidator = errors.New("unknown validator")

	// ErrInvalidURN indicates a string that does not match the URN grammar
	ErrInvalidURN = errors.New("invalid urn")

	// ErrCacheMiss indicates a result-cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrNotFound indicates a URN with no instance in the catalog
	ErrNotFound = errors.New("not found")
)

// URNError wraps ErrInvalidURN with the offending value
type URNError struct {
	Value string
	Err   error
}

func (e *URNError) Error() string {
	return fmt.Sprintf("urn %q: %v", e.Value, e.Err)
}

func (e *URNError) Unwrap() error {
	return e.Err
}

// NewURNError creates a URNError for a malformed reference
func NewURNError(value string, err error) *URNError {
	if err == nil {
		err = ErrInvalidURN
	}
	return &URNError{Value: value, Err: err}
}

// ValidatorFault records a validator implementation that panicked mid-run.
// It is reported as a synthetic error-level issue, never propagated.
type ValidatorFault struct {
	Validator string
	Recovered any
}

func (e *ValidatorFault) Error() string {
	return fmt.Sprintf("validator %s failed: %v", e.Validator, e.Recovered)
}
