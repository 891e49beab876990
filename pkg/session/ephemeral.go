// Package session holds the short-lived cryptographic state of one
// onboarding exchange. Each connection owns exactly one Ephemeral; it
// is never shared, and Destroy zeroes every secret buffer. Destroy is
// idempotent, so the double-free and use-after-free hazards of manual
// release pairs cannot occur: a destroyed context simply has no
// material left.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Default lengths for the P-256 cipher suite.
const (
	// DefaultDigestLen is the digest length in bytes (SHA-256).
	DefaultDigestLen = 32

	// DefaultNonceLen is the nonce length in bytes.
	DefaultNonceLen = 16
)

// Ephemeral errors.
var (
	// ErrDestroyed indicates use of a context after Destroy.
	ErrDestroyed = errors.New("ephemeral context destroyed")

	// ErrInvalidLength indicates a non-positive digest or nonce length.
	ErrInvalidLength = errors.New("invalid digest or nonce length")
)

// Ephemeral is the working cryptographic state of one exchange:
// nonces and the intermediate/derived keys. All byte fields are secret
// and are zeroed by Destroy.
type Ephemeral struct {
	// InitiatorNonce is our nonce (I-nonce).
	InitiatorNonce []byte

	// ResponderNonce is the peer's nonce (R-nonce).
	ResponderNonce []byte

	// EnrolleeNonce is the Enrollee's configuration nonce (E-nonce).
	EnrolleeNonce []byte

	// K1, K2 are the first and second intermediate keys; KE is the
	// final exchange key.
	K1, K2, KE []byte

	digestLen int
	nonceLen  int
	destroyed bool
}

// NewEphemeral allocates an ephemeral context for the given digest and
// nonce lengths and draws a fresh initiator nonce.
func NewEphemeral(digestLen, nonceLen int) (*Ephemeral, error) {
	if digestLen <= 0 || nonceLen <= 0 {
		return nil, ErrInvalidLength
	}
	e := &Ephemeral{
		InitiatorNonce: make([]byte, nonceLen),
		digestLen:      digestLen,
		nonceLen:       nonceLen,
	}
	if _, err := rand.Read(e.InitiatorNonce); err != nil {
		return nil, fmt.Errorf("failed to draw initiator nonce: %w", err)
	}
	return e, nil
}

// DigestLen returns the digest length for this exchange.
func (e *Ephemeral) DigestLen() int { return e.digestLen }

// NonceLen returns the nonce length for this exchange.
func (e *Ephemeral) NonceLen() int { return e.nonceLen }

// Destroyed reports whether Destroy has been called.
func (e *Ephemeral) Destroyed() bool { return e.destroyed }

// DeriveKey expands a shared secret into a key of the context's digest
// length using HKDF-SHA256 with the given info label (Easy Connect
// §3.2.2 key schedule).
func (e *Ephemeral) DeriveKey(secret, salt []byte, info string) ([]byte, error) {
	if e.destroyed {
		return nil, ErrDestroyed
	}
	key := make([]byte, e.digestLen)
	r := hkdf.New(sha256.New, secret, salt, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s: %w", info, err)
	}
	return key, nil
}

// Destroy zeroes all secret material and marks the context unusable.
// Safe to call more than once.
func (e *Ephemeral) Destroy() {
	if e == nil || e.destroyed {
		return
	}
	for _, buf := range [][]byte{
		e.InitiatorNonce, e.ResponderNonce, e.EnrolleeNonce,
		e.K1, e.K2, e.KE,
	} {
		zero(buf)
	}
	e.InitiatorNonce = nil
	e.ResponderNonce = nil
	e.EnrolleeNonce = nil
	e.K1, e.K2, e.KE = nil, nil, nil
	e.destroyed = true
}

// zero overwrites b in place.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
