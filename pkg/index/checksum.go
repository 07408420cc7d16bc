package index

import (
	"crypto/sha256"
	"encoding/base64"
)

// Checksum returns the base64-encoded SHA-256 hash of a document body.
// It is the change-detection fingerprint persisted alongside the document.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return base64.StdEncoding.EncodeToString(sum[:])
}
