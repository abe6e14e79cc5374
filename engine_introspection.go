package goSaaS

import (
	"context"
	"time"
)

// HealthStatus is an on-demand backend health result. A backend that is not configured
// reports available.
type HealthStatus struct {
	StoreAvailable bool
	StoreLatency   time.Duration
	RedisAvailable bool
	RedisLatency   time.Duration
}

// OK reports whether every configured backend answered.
func (h HealthStatus) OK() bool {
	return h.StoreAvailable && h.RedisAvailable
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health pings the store (when it supports Ping) and the Redis client.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil {
		return HealthStatus{}
	}
	status := HealthStatus{StoreAvailable: true, RedisAvailable: true}

	if p, ok := e.store.(pinger); ok {
		start := time.Now()
		err := p.Ping(ctx)
		status.StoreAvailable, status.StoreLatency = err == nil, time.Since(start)
	}
	if e.redis != nil {
		start := time.Now()
		err := e.redis.Ping(ctx).Err()
		status.RedisAvailable, status.RedisLatency = err == nil, time.Since(start)
	}
	return status
}

// SignInFailures returns the failed sign-in count currently held against email.
func (e *Engine) SignInFailures(ctx context.Context, email string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	return e.limiter.SignInFailures(ctx, normalizeEmail(email))
}
