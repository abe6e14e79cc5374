package goSaaS

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goSaaS/jwt"
)

// Config is the complete engine configuration. Start from DefaultConfig and override
// fields; Builder.Build validates the result and keeps its own copy.
type Config struct {
	ProductionMode bool
	Session        SessionConfig
	Password       PasswordConfig
	RateLimit      RateLimitConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
	Activity       ActivityConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the session token and its cookie.
type SessionConfig struct {
	Secret       []byte
	TTL          time.Duration
	Issuer       string
	ExpiryMode   jwt.ExpiryMode
	Leeway       time.Duration
	CookieName   string
	CookieDomain string
	SecureCookie bool
	// SlidingRenewal re-issues the session with a fresh Expires on GET requests.
	SlidingRenewal bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id parameters for new digests. AcceptBcrypt lets accounts
// carrying bcrypt digests sign in; UpgradeOnSignIn rewrites them to Argon2id.
type PasswordConfig struct {
	Memory           uint32 // in KB
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
	AcceptBcrypt     bool
	BcryptCost       int
	UpgradeOnSignIn  bool
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig bounds sign-in failures and sign-up attempts. Counters live in Redis
// when the builder has a client, in process memory otherwise.
type RateLimitConfig struct {
	Enabled           bool
	EnableIPThrottle  bool
	MaxSignInFailures int
	SignInCooldown    time.Duration
	MaxSignUpAttempts int
	SignUpWindow      time.Duration
	RedisPrefix       string
}

// AuditConfig controls the asynchronous security-event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// ActivityConfig controls the activity log.
type ActivityConfig struct {
	RecentLimit int
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used when the builder is given none. Session
// Secret is left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:          jwt.DefaultTTL,
			Issuer:       "gosaas",
			ExpiryMode:   jwt.ExpiryFixedWindow,
			CookieName:   "session",
			SecureCookie: true,
		},
		Password: PasswordConfig{
			Memory:          64 * 1024,
			Time:            3,
			Parallelism:     2,
			SaltLength:      16,
			KeyLength:       32,
			AcceptBcrypt:    true,
			BcryptCost:      10,
			UpgradeOnSignIn: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			EnableIPThrottle:  false,
			MaxSignInFailures: 5,
			SignInCooldown:    15 * time.Minute,
			MaxSignUpAttempts: 10,
			SignUpWindow:      time.Hour,
			RedisPrefix:       "gosaas:rl:",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Activity: ActivityConfig{
			RecentLimit: 10,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.Secret = cloneBytes(cfg.Session.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	// Session
	if len(c.Session.Secret) == 0 {
		return errors.New("Session Secret is required")
	}
	if c.ProductionMode && len(c.Session.Secret) < 32 {
		return errors.New("Session Secret must be at least 32 bytes in production mode")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if c.Session.Leeway < 0 || c.Session.Leeway > 2*time.Minute {
		return errors.New("Session Leeway must be between 0 and 2m")
	}
	switch c.Session.ExpiryMode {
	case jwt.ExpiryFixedWindow, jwt.ExpiryFromPayload:
	default:
		return errors.New("Session ExpiryMode is invalid")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("Session CookieName must not be blank")
	}
	if c.ProductionMode && !c.Session.SecureCookie {
		return errors.New("Session SecureCookie is required in production mode")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.ProductionMode && c.Password.Memory < 19*1024 {
		return errors.New("Password Memory must be >= 19456 KB in production mode")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}
	if c.Password.AcceptBcrypt && (c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31) {
		return errors.New("Password BcryptCost must be between 4 and 31")
	}

	// Rate limits
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxSignInFailures < 0 || c.RateLimit.MaxSignUpAttempts < 0 {
			return errors.New("RateLimit budgets must be >= 0")
		}
		if c.RateLimit.MaxSignInFailures > 0 && c.RateLimit.SignInCooldown <= 0 {
			return errors.New("RateLimit SignInCooldown must be > 0")
		}
		if c.RateLimit.MaxSignUpAttempts > 0 && c.RateLimit.SignUpWindow <= 0 {
			return errors.New("RateLimit SignUpWindow must be > 0")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}
	if c.Activity.RecentLimit <= 0 {
		return errors.New("Activity RecentLimit must be > 0")
	}
	return nil
}
