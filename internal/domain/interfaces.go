package domain

import (
	"context"
	"time"
)

// Validator is a named validation rule run against a manifest
type Validator interface {
	// Name returns the validator name used for registration and reporting
	Name() string
	// Validate checks one manifest and enumerates its issues
	Validate(m Manifest) Result
}

// ValidatorFunc adapts a plain function into a Validator
type ValidatorFunc struct {
	ValidatorName string
	Fn            func(m Manifest) Result
}

// Name returns the validator name
func (v ValidatorFunc) Name() string { return v.ValidatorName }

// Validate runs the wrapped function
func (v ValidatorFunc) Validate(m Manifest) Result { return v.Fn(m) }

// Cache defines the interface for the derived-result cache. The core is
// pure; caching is an optional optimization layered on top of it.
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}
