package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	b, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}
	digest, err := b.Hash("bcrypt-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !b.Recognizes(digest) {
		t.Fatalf("expected bcrypt digest, got %s", digest)
	}
	if ok, err := b.Verify("bcrypt-password", digest); err != nil || !ok {
		t.Fatalf("expected match: ok=%v err=%v", ok, err)
	}
	if ok, err := b.Verify("other-password", digest); err != nil || ok {
		t.Fatalf("expected mismatch: ok=%v err=%v", ok, err)
	}
	if _, err := b.Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected 73 bytes to be rejected, got %v", err)
	}
}

func TestChainVerifiesLegacyAndFlagsUpgrade(t *testing.T) {
	legacy, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}
	primary := newArgon2(t, fastConfig())
	chain, err := NewChain(primary, legacy)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	old, err := legacy.Hash("legacy-password")
	if err != nil {
		t.Fatalf("legacy Hash: %v", err)
	}
	if ok, err := chain.Verify("legacy-password", old); err != nil || !ok {
		t.Fatalf("expected legacy digest to verify: ok=%v err=%v", ok, err)
	}
	if up, err := chain.NeedsUpgrade(old); err != nil || !up {
		t.Fatalf("expected legacy digest to need upgrade: up=%v err=%v", up, err)
	}

	fresh, err := chain.Hash("legacy-password")
	if err != nil {
		t.Fatalf("chain Hash: %v", err)
	}
	if !primary.Recognizes(fresh) {
		t.Fatalf("expected chain to hash with primary, got %s", fresh)
	}
	if up, err := chain.NeedsUpgrade(fresh); err != nil || up {
		t.Fatalf("expected fresh digest to be current: up=%v err=%v", up, err)
	}

	if _, err := chain.Verify("x", "$md5$whatever"); !errors.Is(err, ErrUnsupportedDigest) {
		t.Fatalf("expected ErrUnsupportedDigest, got %v", err)
	}
}
