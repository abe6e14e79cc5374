package password

import (
	"errors"
	"fmt"
)

const (
	// MinPasswordBytes matches the shortest password the sign-up form accepts.
	MinPasswordBytes = 8
	// DefaultMaxPasswordBytes bounds hashing cost for oversized input.
	DefaultMaxPasswordBytes = 1024
)

var (
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrPasswordTooLong   = errors.New("password is too long")
	ErrUnsupportedDigest = errors.New("unsupported password digest")
)

// Hasher hashes and compares passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) (bool, error)
	// Recognizes reports whether digest was produced by this hasher's scheme.
	Recognizes(digest string) bool
	// NeedsUpgrade reports whether digest should be replaced by a fresh Hash.
	NeedsUpgrade(digest string) (bool, error)
}

// Chain hashes with Primary and verifies with the first hasher that recognises the
// digest.
type Chain struct {
	Primary Hasher
	Legacy  []Hasher
}

// NewChain returns a Chain. primary is required.
func NewChain(primary Hasher, legacy ...Hasher) (*Chain, error) {
	if primary == nil {
		return nil, errors.New("password: primary hasher is required")
	}
	return &Chain{Primary: primary, Legacy: legacy}, nil
}

func (c *Chain) Hash(plain string) (string, error) {
	return c.Primary.Hash(plain)
}

func (c *Chain) Verify(plain, digest string) (bool, error) {
	h, err := c.pick(digest)
	if err != nil {
		return false, err
	}
	return h.Verify(plain, digest)
}

func (c *Chain) Recognizes(digest string) bool {
	_, err := c.pick(digest)
	return err == nil
}

// NeedsUpgrade is true for every legacy digest and for primary digests with weaker
// parameters.
func (c *Chain) NeedsUpgrade(digest string) (bool, error) {
	if c.Primary.Recognizes(digest) {
		return c.Primary.NeedsUpgrade(digest)
	}
	if _, err := c.pick(digest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Chain) pick(digest string) (Hasher, error) {
	if c.Primary.Recognizes(digest) {
		return c.Primary, nil
	}
	for _, h := range c.Legacy {
		if h != nil && h.Recognizes(digest) {
			return h, nil
		}
	}
	return nil, ErrUnsupportedDigest
}

func checkLength(plain string, max int) error {
	if len(plain) < MinPasswordBytes {
		return fmt.Errorf("%w: need at least %d bytes", ErrPasswordTooShort, MinPasswordBytes)
	}
	if len(plain) > max {
		return fmt.Errorf("%w: at most %d bytes", ErrPasswordTooLong, max)
	}
	return nil
}
