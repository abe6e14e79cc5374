package goSaaS

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/internal/audit"
	"github.com/MrEthical07/goSaaS/internal/rate"
	"github.com/MrEthical07/goSaaS/jwt"
	"github.com/MrEthical07/goSaaS/password"
	"github.com/MrEthical07/goSaaS/session"
)

// Builder assembles an Engine. A Builder is single use.
type Builder struct {
	config    Config
	store     domain.Store
	redis     redis.UniversalClient
	billing   billing.Provider
	logger    zerolog.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the storage collaborator. Required.
func (b *Builder) WithStore(store domain.Store) *Builder {
	b.store = store
	return b
}

// WithRedis moves rate-limit counters into Redis. Without it they live in process
// memory, which is only correct for a single instance.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithBilling sets the billing provider. Without it billing actions fail with
// billing.ErrBillingDisabled.
func (b *Builder) WithBilling(provider billing.Provider) *Builder {
	b.billing = provider
	return b
}

func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets where audit events go once Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides time.Now for session expiry and soft deletes. Tests use it.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("store required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	engine := &Engine{
		config:  cfg,
		store:   b.store,
		billing: b.billing,
		logger:  b.logger.With().Str("component", "engine").Logger(),
		now:     now,
		metrics: NewMetrics(cfg.Metrics),
		redis:   b.redis,
	}
	if engine.billing == nil {
		engine.billing = billing.Disabled{}
	}

	// -------- SESSIONS --------
	codec, err := jwt.NewCodec(jwt.Config{
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		ExpiryMode: cfg.Session.ExpiryMode,
		Issuer:     cfg.Session.Issuer,
		Leeway:     cfg.Session.Leeway,
		Now:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}
	cookies := session.NewCookieStore(session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.SecureCookie,
	})
	engine.sessions, err = session.NewManager(codec, cookies, b.store, session.ManagerConfig{
		Now:      now,
		Observer: sessionObserver{engine: engine},
	})
	if err != nil {
		return nil, err
	}
	engine.guards = action.NewGuards(engine.sessions, b.store, engine.metrics)

	// -------- PASSWORDS --------
	primary, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}
	var legacy []password.Hasher
	if cfg.Password.AcceptBcrypt {
		bc, err := password.NewBcrypt(cfg.Password.BcryptCost)
		if err != nil {
			return nil, err
		}
		legacy = append(legacy, bc)
	}
	engine.passwords, err = password.NewChain(primary, legacy...)
	if err != nil {
		return nil, err
	}

	// -------- RATE LIMITS --------
	if cfg.RateLimit.Enabled {
		var counter rate.Counter
		if b.redis != nil {
			counter = rate.NewRedisCounter(b.redis).WithPrefix(cfg.RateLimit.RedisPrefix)
		} else {
			mem := rate.NewMemoryCounter()
			engine.closers = append(engine.closers, mem.Close)
			counter = mem
		}
		engine.limiter = rate.New(counter, rate.Config{
			EnableIPThrottle:  cfg.RateLimit.EnableIPThrottle,
			MaxSignInFailures: cfg.RateLimit.MaxSignInFailures,
			SignInCooldown:    cfg.RateLimit.SignInCooldown,
			MaxSignUpAttempts: cfg.RateLimit.MaxSignUpAttempts,
			SignUpWindow:      cfg.RateLimit.SignUpWindow,
		})
	}

	// -------- AUDIT --------
	sink := b.auditSink
	if sink == nil {
		sink = audit.NewZerologSink(b.logger)
	}
	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
		Now:        now,
	}, sink)

	engine.buildActions()
	b.built = true

	return engine, nil
}
