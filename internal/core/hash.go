package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent derives the asset version sent to Inertia clients from the
// manifest bytes: the first 12 hex digits of their SHA-256.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:6])
}
