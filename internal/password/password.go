// Package password implements the fixed digest the deployed system stores.
// The scheme is pinned: seeded staff credentials and the mobile client's
// offline login both compare against sha256 hex digests.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Digest hashes a plaintext password into the stored form.
func Digest(plain string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(plain)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether plain matches the stored digest.
func Verify(plain, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(plain)), []byte(digest)) == 1
}
