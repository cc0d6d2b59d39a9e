package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
)

// Algorithm tags prefixed to rendered digests
const (
	AlgFNV1a64 = "fnv1a64"
	AlgSHA256  = "sha256"
)

// HashFNV digests a value with 64-bit FNV-1a over its canonical string and
// renders it as "fnv1a64-" plus 16 lowercase hex characters. The same
// canonical input produces the same digest across runs and languages.
func HashFNV(v any) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(Canonicalize(v)))
	return fmt.Sprintf("%s-%016x", AlgFNV1a64, h.Sum64())
}

// HashSHA256 digests a value with SHA-256 over its canonical string and
// renders it as "sha256-" plus 64 lowercase hex characters. Used where
// cryptographic strength is required (cache keys, audit trails).
func HashSHA256(v any) string {
	sum := sha256.Sum256([]byte(Canonicalize(v)))
	return AlgSHA256 + "-" + hex.EncodeToString(sum[:])
}
