package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultCookieName is the name of the session cookie.
const DefaultCookieName = "session"

// ErrNoCookieJar is returned when a cookie write is attempted on a context that was not
// prepared with [WithCookies].
var ErrNoCookieJar = errors.New("no cookie jar bound to context")

type cookieJarContextKey struct{}

type cookieJar struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	r       *http.Request
	pending map[string]*http.Cookie
}

// WithCookies binds the request/response pair to ctx so a [CookieStore] can read the
// incoming cookie and queue outgoing ones. Writes must happen before the response header
// is flushed.
func WithCookies(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, cookieJarContextKey{}, &cookieJar{
		w:       w,
		r:       r,
		pending: make(map[string]*http.Cookie),
	})
}

func jarFromContext(ctx context.Context) *cookieJar {
	if ctx == nil {
		return nil
	}
	jar, _ := ctx.Value(cookieJarContextKey{}).(*cookieJar)
	return jar
}

func (j *cookieJar) get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if c, ok := j.pending[name]; ok {
		if c.MaxAge < 0 || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
	if j.r == nil {
		return "", false
	}
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (j *cookieJar) set(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.pending[c.Name] = c
	if j.w == nil {
		return
	}

	header := j.w.Header()
	prefix := c.Name + "="
	kept := make([]string, 0, len(header.Values("Set-Cookie")))
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	if v := c.String(); v != "" {
		header.Add("Set-Cookie", v)
	}
}

// CookieConfig configures a [CookieStore].
type CookieConfig struct {
	Name   string
	Path   string
	Domain string
	Secure bool
}

// CookieStore reads and writes the session token cookie. It holds no per-request state;
// everything request scoped lives in the jar on the context.
type CookieStore struct {
	cfg CookieConfig
}

// NewCookieStore returns a CookieStore. Empty Name and Path default to "session" and "/".
func NewCookieStore(cfg CookieConfig) *CookieStore {
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &CookieStore{cfg: cfg}
}

// Name returns the cookie name.
func (s *CookieStore) Name() string {
	return s.cfg.Name
}

// Read returns the token from the current request, honouring writes already made in the
// same request.
func (s *CookieStore) Read(ctx context.Context) (string, bool) {
	jar := jarFromContext(ctx)
	if jar == nil {
		return "", false
	}
	return jar.get(s.cfg.Name)
}

// Write sets the session cookie to token with the given expiry, replacing any earlier
// write in the same response.
func (s *CookieStore) Write(ctx context.Context, token string, expiresAt time.Time) error {
	jar := jarFromContext(ctx)
	if jar == nil {
		return ErrNoCookieJar
	}
	jar.set(s.cookie(token, expiresAt, 0))
	return nil
}

// Clear instructs the client to drop the session cookie.
func (s *CookieStore) Clear(ctx context.Context) error {
	jar := jarFromContext(ctx)
	if jar == nil {
		return ErrNoCookieJar
	}
	jar.set(s.cookie("", time.Unix(0, 0), -1))
	return nil
}

func (s *CookieStore) cookie(value string, expiresAt time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.Name,
		Value:    value,
		Path:     s.cfg.Path,
		Domain:   s.cfg.Domain,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
