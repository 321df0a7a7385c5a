package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded"}`)
	sig := Sign(payload, "whsec_test")

	assert.True(t, Verify(payload, sig, "whsec_test"))
}

func TestVerifyWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_123"}`)
	sig := Sign(payload, "whsec_right")

	assert.False(t, Verify(payload, sig, "whsec_wrong"))
}

func TestVerifyTamperedPayload(t *testing.T) {
	sig := Sign([]byte("original"), "secret")

	assert.False(t, Verify([]byte("tampered"), sig, "secret"))
}

func TestVerifyMalformedSignature(t *testing.T) {
	payload := []byte("payload")

	assert.False(t, Verify(payload, "not-hex!", "secret"))
	assert.False(t, Verify(payload, "", "secret"))
	assert.False(t, Verify(payload, "   ", "secret"))
}

func TestVerifyEmptySecret(t *testing.T) {
	payload := []byte("payload")
	sig := Sign(payload, "")

	assert.False(t, Verify(payload, sig, ""))
}

func TestVerifyTrimsWhitespace(t *testing.T) {
	payload := []byte("payload")
	sig := Sign(payload, "secret")

	assert.True(t, Verify(payload, "  "+sig+"\n", "secret"))
}

func TestProviderWrappersShareThePrimitive(t *testing.T) {
	payload := []byte("payload")
	sig := Sign(payload, "secret")

	assert.True(t, VerifyStripe(payload, sig, "secret"))
	assert.True(t, VerifyDocuSign(payload, sig, "secret"))
	assert.True(t, VerifyIdentity(payload, sig, "secret"))
	assert.True(t, VerifyScreening(payload, sig, "secret"))
}
