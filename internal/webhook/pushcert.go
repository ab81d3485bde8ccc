package webhook

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// NonceKind is the discriminator of CertificateNonce (spec.md §3's
// {Unsolicited, Missing, Bad, Ok, Slop} tagged variant).
type NonceKind int

const (
	NonceMissing NonceKind = iota
	NonceUnsolicited
	NonceBad
	NonceOK
	NonceSlop
)

// CertificateNonce mirrors GIT_PUSH_CERT_NONCE_STATUS's classification of
// the push certificate's replay-protection nonce.
type CertificateNonce struct {
	Kind         NonceKind
	Nonce        string // empty for Missing
	StaleSeconds uint32 // only meaningful for Slop
}

// SignatureStatus is GIT_PUSH_CERT_STATUS's single-letter code mapped to
// its named form (spec.md §6).
type SignatureStatus int

const (
	StatusNoSignature SignatureStatus = iota
	StatusGood
	StatusBad
	StatusUnknownValidity
	StatusExpired
	StatusExpiredKey
	StatusRevokedKey
	StatusCannotCheck
)

func parseSignatureStatus(code string) (SignatureStatus, bool) {
	switch code {
	case "G":
		return StatusGood, true
	case "B":
		return StatusBad, true
	case "U":
		return StatusUnknownValidity, true
	case "X":
		return StatusExpired, true
	case "Y":
		return StatusExpiredKey, true
	case "R":
		return StatusRevokedKey, true
	case "E":
		return StatusCannotCheck, true
	case "N":
		return StatusNoSignature, true
	default:
		return 0, false
	}
}

// PushSignature is the optional push-certificate record of spec.md §3,
// sourced from the GIT_PUSH_CERT* environment variables the git server
// sets when the push was made with `git push --signed`.
type PushSignature struct {
	Certificate string
	Signer      string
	Key         string
	Status      SignatureStatus
	Nonce       CertificateNonce

	// ParsedKeyID is an expansion over the original source: a best-effort
	// OpenPGP parse of Certificate's embedded signature block (SPEC_FULL.md
	// §4.6). It is kept on this record only: it is not part of the webhook
	// envelope, is not written to trace output, and never gates
	// accept/reject.
	ParsedKeyID string
}

func certificateNonceFromEnviron() CertificateNonce {
	status, ok := os.LookupEnv("GIT_PUSH_CERT_NONCE_STATUS")
	if !ok {
		return CertificateNonce{Kind: NonceMissing}
	}
	nonce, hasNonce := os.LookupEnv("GIT_PUSH_CERT_NONCE")

	switch status {
	case "UNSOLICITED":
		if !hasNonce {
			return CertificateNonce{Kind: NonceMissing}
		}
		return CertificateNonce{Kind: NonceUnsolicited, Nonce: nonce}
	case "BAD":
		if !hasNonce {
			return CertificateNonce{Kind: NonceMissing}
		}
		return CertificateNonce{Kind: NonceBad, Nonce: nonce}
	case "OK":
		if !hasNonce {
			return CertificateNonce{Kind: NonceMissing}
		}
		return CertificateNonce{Kind: NonceOK, Nonce: nonce}
	case "SLOP":
		if !hasNonce {
			return CertificateNonce{Kind: NonceMissing}
		}
		stale, _ := strconv.ParseUint(os.Getenv("GIT_PUSH_CERT_NONCE_SLOP"), 10, 32)
		return CertificateNonce{Kind: NonceSlop, Nonce: nonce, StaleSeconds: uint32(stale)}
	default:
		return CertificateNonce{Kind: NonceMissing}
	}
}

// PushSignatureFromEnviron builds a PushSignature from GIT_PUSH_CERT*,
// returning false when the certificate, signer, key, or status variable is
// absent (spec.md §6).
func PushSignatureFromEnviron() (PushSignature, bool) {
	cert, ok := os.LookupEnv("GIT_PUSH_CERT")
	if !ok {
		return PushSignature{}, false
	}
	signer, ok := os.LookupEnv("GIT_PUSH_CERT_SIGNER")
	if !ok {
		return PushSignature{}, false
	}
	key, ok := os.LookupEnv("GIT_PUSH_CERT_KEY")
	if !ok {
		return PushSignature{}, false
	}
	status, ok := parseSignatureStatus(os.Getenv("GIT_PUSH_CERT_STATUS"))
	if !ok {
		return PushSignature{}, false
	}

	sig := PushSignature{
		Certificate: cert,
		Signer:      signer,
		Key:         key,
		Status:      status,
		Nonce:       certificateNonceFromEnviron(),
	}
	sig.ParsedKeyID = parseSignatureKeyID(cert)
	return sig, true
}

// parseSignatureKeyID extracts the issuer key id from the armored OpenPGP
// signature block embedded at the end of a push certificate. Any failure
// (no block found, malformed armor, non-signature packet) yields an empty
// string; this is diagnostic-only and never affects accept/reject.
func parseSignatureKeyID(cert string) string {
	start := strings.Index(cert, "-----BEGIN PGP SIGNATURE-----")
	if start == -1 {
		return ""
	}
	block, err := armor.Decode(strings.NewReader(cert[start:]))
	if err != nil {
		return ""
	}
	reader := packet.NewReader(block.Body)
	pkt, err := reader.Next()
	if err != nil {
		return ""
	}
	switch sig := pkt.(type) {
	case *packet.Signature:
		if sig.IssuerKeyId == nil {
			return ""
		}
		return fmt.Sprintf("%016X", *sig.IssuerKeyId)
	case *packet.SignatureV3:
		return fmt.Sprintf("%016X", sig.IssuerKeyId)
	default:
		return ""
	}
}
