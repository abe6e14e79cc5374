package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrEthical07/goSaaS/domain"
)

// DefaultTTL is the lifetime of a fresh session.
const DefaultTTL = 24 * time.Hour

// ExpiresLayout is the ISO-8601 form of Payload.Expires inside the token.
const ExpiresLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrInvalidSignature covers tampered, foreign-key, wrong-algorithm and malformed tokens.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired is returned when the envelope exp claim has passed.
	ErrExpired = errors.New("token expired")
)

// ExpiryMode selects where the envelope exp claim comes from.
type ExpiryMode uint8

const (
	// ExpiryFixedWindow stamps exp = issuance + TTL on every encode.
	ExpiryFixedWindow ExpiryMode = iota
	// ExpiryFromPayload stamps exp = Payload.Expires.
	ExpiryFromPayload
)

// Config configures a [Codec]. Secret is required.
type Config struct {
	Secret     []byte
	TTL        time.Duration
	ExpiryMode ExpiryMode
	Issuer     string
	Leeway     time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Payload is the signed session claim set.
type Payload struct {
	UserID  int64
	TeamID  int64
	Role    domain.Role
	Expires time.Time
}

// SessionClaims is the wire form of a [Payload].
type SessionClaims struct {
	UserID  int64  `json:"user_id"`
	TeamID  int64  `json:"team_id,omitempty"`
	Role    string `json:"role"`
	Expires string `json:"expires"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes session tokens. It is immutable after construction and safe
// for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.ExpiryMode {
	case ExpiryFixedWindow, ExpiryFromPayload:
	default:
		return nil, errors.New("unsupported expiry mode")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	return &Codec{config: cfg}, nil
}

// TTL returns the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}

// Encode signs p. The envelope gets iat = now and exp according to the expiry mode.
func (c *Codec) Encode(p Payload) (string, error) {
	now := c.config.Now()
	exp := now.Add(c.config.TTL)
	if c.config.ExpiryMode == ExpiryFromPayload {
		if p.Expires.IsZero() {
			return "", errors.New("payload expiry is required")
		}
		exp = p.Expires
	}

	claims := SessionClaims{
		UserID:  p.UserID,
		TeamID:  p.TeamID,
		Role:    string(p.Role),
		Expires: p.Expires.UTC().Format(ExpiresLayout),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    c.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.config.Secret)
}

// Decode verifies token and returns its payload. It fails with [ErrExpired] when the
// envelope exp has passed and [ErrInvalidSignature] for everything else.
func (c *Codec) Decode(token string) (Payload, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.config.Now),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, ErrExpired
		}
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return Payload{}, ErrInvalidSignature
	}

	expires, err := time.Parse(ExpiresLayout, claims.Expires)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: bad expires claim", ErrInvalidSignature)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return Payload{
		UserID:  claims.UserID,
		TeamID:  claims.TeamID,
		Role:    role,
		Expires: expires,
	}, nil
}
