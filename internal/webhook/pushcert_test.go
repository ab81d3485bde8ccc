package webhook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushSignatureFromEnvironRequiresAllFour(t *testing.T) {
	t.Setenv("GIT_PUSH_CERT", "cert text")
	t.Setenv("GIT_PUSH_CERT_SIGNER", "signer")
	t.Setenv("GIT_PUSH_CERT_KEY", "ABCDEF")
	// GIT_PUSH_CERT_STATUS deliberately left unset.
	_, ok := PushSignatureFromEnviron()
	require.False(t, ok)
}

func TestPushSignatureFromEnvironAllPresent(t *testing.T) {
	t.Setenv("GIT_PUSH_CERT", "cert text")
	t.Setenv("GIT_PUSH_CERT_SIGNER", "signer")
	t.Setenv("GIT_PUSH_CERT_KEY", "ABCDEF")
	t.Setenv("GIT_PUSH_CERT_STATUS", "G")

	sig, ok := PushSignatureFromEnviron()
	require.True(t, ok)
	require.Equal(t, StatusGood, sig.Status)
	require.Equal(t, "signer", sig.Signer)
	require.Equal(t, NonceMissing, sig.Nonce.Kind)
	require.Empty(t, sig.ParsedKeyID)
}

func TestPushSignatureFromEnvironUnknownStatusRejected(t *testing.T) {
	t.Setenv("GIT_PUSH_CERT", "cert text")
	t.Setenv("GIT_PUSH_CERT_SIGNER", "signer")
	t.Setenv("GIT_PUSH_CERT_KEY", "ABCDEF")
	t.Setenv("GIT_PUSH_CERT_STATUS", "?")
	_, ok := PushSignatureFromEnviron()
	require.False(t, ok)
}

func TestCertificateNonceSlopCapturesStaleSeconds(t *testing.T) {
	t.Setenv("GIT_PUSH_CERT_NONCE_STATUS", "SLOP")
	t.Setenv("GIT_PUSH_CERT_NONCE", "abc123")
	t.Setenv("GIT_PUSH_CERT_NONCE_SLOP", "42")
	nonce := certificateNonceFromEnviron()
	require.Equal(t, NonceSlop, nonce.Kind)
	require.Equal(t, uint32(42), nonce.StaleSeconds)
}

func TestCertificateNonceOK(t *testing.T) {
	t.Setenv("GIT_PUSH_CERT_NONCE_STATUS", "OK")
	t.Setenv("GIT_PUSH_CERT_NONCE", "abc123")
	nonce := certificateNonceFromEnviron()
	require.Equal(t, NonceOK, nonce.Kind)
	require.Equal(t, "abc123", nonce.Nonce)
}

func TestParseSignatureKeyIDNoSignatureBlockIsEmpty(t *testing.T) {
	require.Empty(t, parseSignatureKeyID("no signature here"))
}
