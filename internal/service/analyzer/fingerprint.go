package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns a deterministic content hash of the normalized text.
// Case and punctuation variants of the same words hash identically, which
// makes the fingerprint usable as an exact-duplicate index.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// NormalizeText lowercases the text and strips every character outside
// [a-z0-9] and whitespace.
func NormalizeText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
