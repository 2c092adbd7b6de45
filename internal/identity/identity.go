// Package identity derives stable participant fingerprints so votes can be
// deduplicated without ever storing a raw identifier.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint hashes a raw participant identifier into a fixed-length,
// non-reversible digest. Deliberately unsalted: the same input must map to
// the same fingerprint across processes and restarts, or the uniqueness
// constraint on (poll, fingerprint) stops working.
func Fingerprint(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
