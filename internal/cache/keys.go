package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key prefixes for the cached operation families
const (
	PrefixValidate = "validate"
	PrefixDiff     = "diff"
	PrefixMigrate  = "migrate"
)

// GenerateKey builds a cache key for an operation over one or more manifest
// digests. The digests already identify normalized content exactly, so the
// key is the SHA-256 of the operation name joined with its inputs. Digest
// order matters: diff(a, b) and diff(b, a) are different results.
func GenerateKey(op string, digests ...string) string {
	hash := sha256.Sum256([]byte(op + "\n" + strings.Join(digests, "\n")))
	return op + ":" + hex.EncodeToString(hash[:])
}

// ValidateKey builds the key for a validation report. The validator
// selection is part of the identity: running a subset caches separately
// from running the full registry.
func ValidateKey(manifestHash string, validators ...string) string {
	return GenerateKey(PrefixValidate, append([]string{manifestHash}, validators...)...)
}

// DiffKey builds the key for a diff result between two manifest digests
func DiffKey(fromHash, toHash string) string {
	return GenerateKey(PrefixDiff, fromHash, toHash)
}

// MigrateKey builds the key for a migration plan derived from a diff
func MigrateKey(fromHash, toHash string) string {
	return GenerateKey(PrefixMigrate, fromHash, toHash)
}
