package audit

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintSource returns a short stable hash of policy source text.
// Audit entries carry this instead of the raw body, so the log stays
// compact and never leaks full policy contents.
func FingerprintSource(src string) string {
	if src == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(src))
	return "sha256:" + hex.EncodeToString(sum[:8])
}
