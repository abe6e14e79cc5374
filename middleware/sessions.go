package middleware

import (
	"net"
	"net/http"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/session"
	"github.com/rs/zerolog/hlog"
)

// SessionOptions tunes [Sessions].
type SessionOptions struct {
	// SlidingRenewal re-issues a valid cookie with a fresh expiry on safe requests.
	SlidingRenewal bool
}

// Sessions must run before any handler that calls engine actions.
func Sessions(sessions *session.Manager, opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := session.WithCookies(r.Context(), w, r)
			ctx = goSaaS.WithClientIP(ctx, remoteIP(r))
			r = r.WithContext(ctx)

			if sessions != nil && safeMethod(r.Method) {
				switch res := sessions.Resolve(ctx); res.State {
				case session.Expired, session.Tampered:
					if err := sessions.Destroy(ctx); err != nil {
						hlog.FromRequest(r).Warn().Err(err).Msg("clear stale session cookie")
					}
				case session.Valid:
					if opts.SlidingRenewal {
						if _, err := sessions.Renew(ctx); err != nil {
							hlog.FromRequest(r).Warn().Err(err).Msg("renew session")
						}
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession sends requests without a valid session to the sign-in page.
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil || !sessions.Resolve(r.Context()).OK() {
				http.Redirect(w, r, action.SignInPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// remoteIP strips the port from RemoteAddr. chi's RealIP may already have replaced it with
// a bare address.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
