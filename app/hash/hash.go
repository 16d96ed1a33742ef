// Package hash provides the content-addressing primitive used across
// the ingestion pipeline: feed ids are fingerprints of the feed URL,
// item ids are fingerprints of link+title, and duplicate detection
// keys off a fingerprint of the raw entry body.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the lowercase hex SHA-256 digest of data. The
// digest is a pure function of its input, so identities derived from
// it are stable across runs and processes.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FingerprintString is a convenience wrapper for string inputs.
func FingerprintString(s string) string {
	return Fingerprint([]byte(s))
}
