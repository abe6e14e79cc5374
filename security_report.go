package goSaaS

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/jwt"
)

// SecurityReport summarises the security posture the engine was built with.
type SecurityReport struct {
	ProductionMode       bool
	SigningAlgorithm     string
	ExpiryMode           jwt.ExpiryMode
	SessionTTL           time.Duration
	SecureCookie         bool
	SlidingRenewal       bool
	Argon2               PasswordConfigReport
	LegacyBcryptAccepted bool
	RateLimitingActive   bool
	// RateLimitBackend is "redis", "memory" or "" when rate limiting is off.
	RateLimitBackend string
	AuditEnabled     bool
	BillingEnabled   bool
}

// PasswordConfigReport carries the Argon2id parameters.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport returns the engine's posture.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	c := e.config

	backend := ""
	if e.limiter != nil {
		backend = "memory"
		if e.redis != nil {
			backend = "redis"
		}
	}
	_, disabled := e.billing.(billing.Disabled)

	return SecurityReport{
		ProductionMode:   c.ProductionMode,
		SigningAlgorithm: "HS256",
		ExpiryMode:       c.Session.ExpiryMode,
		SessionTTL:       c.Session.TTL,
		SecureCookie:     c.Session.SecureCookie,
		SlidingRenewal:   c.Session.SlidingRenewal,
		Argon2: PasswordConfigReport{
			Memory:      c.Password.Memory,
			Time:        c.Password.Time,
			Parallelism: c.Password.Parallelism,
			SaltLength:  c.Password.SaltLength,
			KeyLength:   c.Password.KeyLength,
		},
		LegacyBcryptAccepted: c.Password.AcceptBcrypt,
		RateLimitingActive:   e.limiter != nil,
		RateLimitBackend:     backend,
		AuditEnabled:         c.Audit.Enabled,
		BillingEnabled:       !disabled,
	}
}

// MarshalZerologObject lets the report be logged with Object.
func (r SecurityReport) MarshalZerologObject(ev *zerolog.Event) {
	ev.Bool("production", r.ProductionMode).
		Str("alg", r.SigningAlgorithm).
		Dur("session_ttl", r.SessionTTL).
		Bool("secure_cookie", r.SecureCookie).
		Bool("sliding_renewal", r.SlidingRenewal).
		Uint32("argon2_memory_kb", r.Argon2.Memory).
		Uint32("argon2_time", r.Argon2.Time).
		Bool("legacy_bcrypt", r.LegacyBcryptAccepted).
		Str("rate_limit_backend", r.RateLimitBackend).
		Bool("audit", r.AuditEnabled).
		Bool("billing", r.BillingEnabled)
}
