package rate

import (
	"context"
	"strings"
	"time"
)

// Config holds limiter budgets. A zero Max disables that check.
type Config struct {
	EnableIPThrottle  bool
	MaxSignInFailures int
	SignInCooldown    time.Duration
	MaxSignUpAttempts int
	SignUpWindow      time.Duration
}

// Limiter enforces sign-in and sign-up budgets on top of a [Counter].
type Limiter struct {
	counter Counter
	config  Config
}

// New creates a Limiter over counter.
func New(counter Counter, cfg Config) *Limiter {
	return &Limiter{counter: counter, config: cfg}
}

// CheckSignIn fails with ErrRateLimited when the email (or IP) has used its failure
// budget. It does not count as an attempt.
func (l *Limiter) CheckSignIn(ctx context.Context, email, ip string) error {
	if l == nil || l.config.MaxSignInFailures <= 0 {
		return nil
	}
	if err := l.check(ctx, signInKey(email), l.config.MaxSignInFailures); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		return l.check(ctx, signInIPKey(ip), l.config.MaxSignInFailures)
	}
	return nil
}

// RecordSignInFailure counts a failed sign-in for the email and IP.
func (l *Limiter) RecordSignInFailure(ctx context.Context, email, ip string) error {
	if l == nil || l.config.MaxSignInFailures <= 0 {
		return nil
	}
	if _, err := l.counter.Incr(ctx, signInKey(email), l.config.SignInCooldown); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if _, err := l.counter.Incr(ctx, signInIPKey(ip), l.config.SignInCooldown); err != nil {
			return err
		}
	}
	return nil
}

// ResetSignIn clears the failure counters after a successful sign-in.
func (l *Limiter) ResetSignIn(ctx context.Context, email, ip string) error {
	if l == nil || l.config.MaxSignInFailures <= 0 {
		return nil
	}
	keys := []string{signInKey(email)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, signInIPKey(ip))
	}
	return l.counter.Del(ctx, keys...)
}

// SignInFailures returns the current failure count for email.
func (l *Limiter) SignInFailures(ctx context.Context, email string) (int, error) {
	if l == nil {
		return 0, nil
	}
	n, err := l.counter.Get(ctx, signInKey(email))
	return int(n), err
}

// AllowSignUp counts a sign-up attempt from ip and fails once the window budget is
// exceeded.
func (l *Limiter) AllowSignUp(ctx context.Context, ip string) error {
	if l == nil || l.config.MaxSignUpAttempts <= 0 || ip == "" {
		return nil
	}
	count, err := l.counter.Incr(ctx, signUpKey(ip), l.config.SignUpWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxSignUpAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) check(ctx context.Context, key string, max int) error {
	count, err := l.counter.Get(ctx, key)
	if err != nil {
		return err
	}
	if count >= int64(max) {
		return ErrRateLimited
	}
	return nil
}

func signInKey(email string) string {
	return "si:" + strings.ToLower(strings.TrimSpace(email))
}

func signInIPKey(ip string) string {
	return "sii:" + ip
}

func signUpKey(ip string) string {
	return "su:" + ip
}
