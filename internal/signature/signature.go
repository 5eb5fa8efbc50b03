// Package signature verifies webhook payload signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks HMAC-SHA256 signatures over raw request bodies.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether provided matches the HMAC-SHA256 of body under the
// configured secret. A "sha256=" prefix on provided is accepted and stripped.
// An empty secret or empty signature always fails.
func (v *Verifier) Verify(body []byte, provided string) bool {
	if len(v.secret) == 0 || provided == "" {
		return false
	}
	provided = strings.TrimPrefix(provided, "sha256=")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
