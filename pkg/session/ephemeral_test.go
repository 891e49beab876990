package session

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewEphemeral(t *testing.T) {
	e, err := NewEphemeral(DefaultDigestLen, DefaultNonceLen)
	if err != nil {
		t.Fatalf("NewEphemeral() error = %v", err)
	}

	if len(e.InitiatorNonce) != DefaultNonceLen {
		t.Errorf("len(InitiatorNonce) = %d, want %d", len(e.InitiatorNonce), DefaultNonceLen)
	}
	if bytes.Equal(e.InitiatorNonce, make([]byte, DefaultNonceLen)) {
		t.Error("InitiatorNonce is all zeros")
	}
	if e.Destroyed() {
		t.Error("Destroyed() = true for fresh context")
	}
}

func TestNewEphemeralInvalidLengths(t *testing.T) {
	if _, err := NewEphemeral(0, DefaultNonceLen); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("NewEphemeral(0, n) error = %v, want ErrInvalidLength", err)
	}
	if _, err := NewEphemeral(DefaultDigestLen, -1); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("NewEphemeral(d, -1) error = %v, want ErrInvalidLength", err)
	}
}

func TestDeriveKey(t *testing.T) {
	e, err := NewEphemeral(DefaultDigestLen, DefaultNonceLen)
	if err != nil {
		t.Fatalf("NewEphemeral() error = %v", err)
	}

	secret := bytes.Repeat([]byte{0x42}, 32)

	k1, err := e.DeriveKey(secret, nil, "first intermediate key")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if len(k1) != DefaultDigestLen {
		t.Errorf("len(k1) = %d, want %d", len(k1), DefaultDigestLen)
	}

	// Deterministic for same inputs, distinct for different labels.
	k1Again, err := e.DeriveKey(secret, nil, "first intermediate key")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if !bytes.Equal(k1, k1Again) {
		t.Error("DeriveKey() is not deterministic")
	}
	k2, err := e.DeriveKey(secret, nil, "second intermediate key")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if bytes.Equal(k1, k2) {
		t.Error("keys for distinct labels must differ")
	}
}

func TestDestroyZeroesMaterial(t *testing.T) {
	e, err := NewEphemeral(DefaultDigestLen, DefaultNonceLen)
	if err != nil {
		t.Fatalf("NewEphemeral() error = %v", err)
	}

	e.K1 = bytes.Repeat([]byte{0xAA}, 32)
	e.ResponderNonce = bytes.Repeat([]byte{0xBB}, 16)

	// Keep aliases to observe the zeroing.
	k1 := e.K1
	rNonce := e.ResponderNonce
	iNonce := e.InitiatorNonce

	e.Destroy()

	if !e.Destroyed() {
		t.Fatal("Destroyed() = false after Destroy")
	}
	for _, buf := range [][]byte{k1, rNonce, iNonce} {
		if !bytes.Equal(buf, make([]byte, len(buf))) {
			t.Error("secret buffer not zeroed by Destroy")
		}
	}
	if e.K1 != nil || e.InitiatorNonce != nil {
		t.Error("fields not cleared by Destroy")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	e, err := NewEphemeral(DefaultDigestLen, DefaultNonceLen)
	if err != nil {
		t.Fatalf("NewEphemeral() error = %v", err)
	}

	e.Destroy()
	e.Destroy() // must not panic or misbehave

	if _, err := e.DeriveKey([]byte{1}, nil, "key"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("DeriveKey() after Destroy error = %v, want ErrDestroyed", err)
	}

	// Nil receiver is tolerated so teardown paths never need a guard.
	var nilCtx *Ephemeral
	nilCtx.Destroy()
}
