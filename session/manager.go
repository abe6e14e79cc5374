package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/jwt"
)

// UserLookup is the slice of the user repository the manager needs.
type UserLookup interface {
	UserByID(ctx context.Context, id int64, scope domain.Scope) (*domain.User, error)
}

// Observer is notified of every cookie resolution. Implementations must be cheap and
// must not block.
type Observer interface {
	ObserveResolution(ctx context.Context, res Resolution, err error)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(ctx context.Context, res Resolution, err error)

// ObserveResolution calls f.
func (f ObserverFunc) ObserveResolution(ctx context.Context, res Resolution, err error) {
	f(ctx, res, err)
}

// ManagerConfig configures a [Manager].
type ManagerConfig struct {
	// Now overrides the clock used for Expires; nil means time.Now.
	Now      func() time.Time
	Observer Observer
}

// Manager implements the session lifecycle on top of a codec and a cookie store.
type Manager struct {
	codec    *jwt.Codec
	cookies  *CookieStore
	users    UserLookup
	now      func() time.Time
	observer Observer
}

// NewManager wires a Manager. users may be nil when [Manager.CurrentUser] is unused.
func NewManager(codec *jwt.Codec, cookies *CookieStore, users UserLookup, cfg ManagerConfig) (*Manager, error) {
	if codec == nil {
		return nil, errors.New("session: codec is required")
	}
	if cookies == nil {
		return nil, errors.New("session: cookie store is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		codec:    codec,
		cookies:  cookies,
		users:    users,
		now:      cfg.Now,
		observer: cfg.Observer,
	}, nil
}

// TTL returns the lifetime applied to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.codec.TTL()
}

// Create issues a fresh session expiring one TTL from now.
func (m *Manager) Create(ctx context.Context, userID, teamID int64, role domain.Role) error {
	return m.issue(ctx, Payload{
		UserID:  userID,
		TeamID:  teamID,
		Role:    role,
		Expires: m.freshExpiry(),
	})
}

// Refresh re-signs the session for the given identity while keeping the Expires of the
// existing cookie. Without a decodable cookie it behaves like Create.
func (m *Manager) Refresh(ctx context.Context, userID, teamID int64, role domain.Role) error {
	res := m.Resolve(ctx)
	if !res.OK() {
		return m.Create(ctx, userID, teamID, role)
	}
	return m.issue(ctx, Payload{
		UserID:  userID,
		TeamID:  teamID,
		Role:    role,
		Expires: res.Payload.Expires,
	})
}

// Renew extends the current session to one TTL from now. It reports false when there is
// no valid session to extend.
func (m *Manager) Renew(ctx context.Context) (bool, error) {
	res := m.Resolve(ctx)
	if !res.OK() {
		return false, nil
	}
	p := res.Payload
	p.Expires = m.freshExpiry()
	if err := m.issue(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// Resolve reads and classifies the session cookie.
func (m *Manager) Resolve(ctx context.Context) Resolution {
	token, ok := m.cookies.Read(ctx)
	if !ok {
		m.observe(ctx, Resolution{State: Absent}, nil)
		return Resolution{State: Absent}
	}

	p, err := m.codec.Decode(token)
	switch {
	case err == nil:
		res := Resolution{State: Valid, Payload: p}
		m.observe(ctx, res, nil)
		return res
	case errors.Is(err, jwt.ErrExpired):
		m.observe(ctx, Resolution{State: Expired}, err)
		return Resolution{State: Expired}
	default:
		m.observe(ctx, Resolution{State: Tampered}, err)
		return Resolution{State: Tampered}
	}
}

// Current returns the decoded payload, or false when the cookie is absent, expired or
// invalid.
func (m *Manager) Current(ctx context.Context) (Payload, bool) {
	res := m.Resolve(ctx)
	return res.Payload, res.OK()
}

// CurrentUser returns the active user the session refers to. A missing session or a
// missing (or soft-deleted) user yields nil without error; storage failures are returned.
func (m *Manager) CurrentUser(ctx context.Context) (*domain.User, error) {
	p, ok := m.Current(ctx)
	if !ok {
		return nil, nil
	}
	if m.users == nil {
		return nil, errors.New("session: no user lookup configured")
	}

	user, err := m.users.UserByID(ctx, p.UserID, domain.ScopeActive)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: load user %d: %w", p.UserID, err)
	}
	if !domain.ScopeActive.Includes(user) {
		return nil, nil
	}
	return user, nil
}

// Destroy clears the session cookie. Calling it without a session is fine.
func (m *Manager) Destroy(ctx context.Context) error {
	return m.cookies.Clear(ctx)
}

func (m *Manager) issue(ctx context.Context, p Payload) error {
	token, err := m.codec.Encode(p)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	return m.cookies.Write(ctx, token, p.Expires)
}

// freshExpiry is truncated to the millisecond precision the token carries so the cookie
// expiry and the decoded payload agree.
func (m *Manager) freshExpiry() time.Time {
	return m.now().Add(m.codec.TTL()).UTC().Truncate(time.Millisecond)
}

func (m *Manager) observe(ctx context.Context, res Resolution, err error) {
	if m.observer != nil {
		m.observer.ObserveResolution(ctx, res, err)
	}
}
