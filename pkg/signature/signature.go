package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verify checks an HMAC-SHA256 hex signature over the raw payload using a
// constant-time comparison. It returns false on any malformed input and never
// panics; callers treat false as "reject the request".
func Verify(payload []byte, sig string, secret string) bool {
	if secret == "" {
		return false
	}
	sig = strings.TrimSpace(sig)
	provided, err := hex.DecodeString(sig)
	if err != nil || len(provided) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(provided, mac.Sum(nil))
}

// Sign computes the hex HMAC-SHA256 of payload. Used by tests and outbound
// signing, it is the inverse of Verify.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// All providers share the same primitive; the named wrappers exist so call
// sites read as "verify the Stripe signature" rather than a bare Verify.
// Provider-specific header names stay at the call sites.

func VerifyStripe(payload []byte, sig, secret string) bool    { return Verify(payload, sig, secret) }
func VerifyDocuSign(payload []byte, sig, secret string) bool  { return Verify(payload, sig, secret) }
func VerifyIdentity(payload []byte, sig, secret string) bool  { return Verify(payload, sig, secret) }
func VerifyScreening(payload []byte, sig, secret string) bool { return Verify(payload, sig, secret) }
