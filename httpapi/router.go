package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/middleware"
)

// Options configures [NewRouter].
type Options struct {
	Logger zerolog.Logger
	// AllowedOrigins enables CORS with credentials for the listed origins. Empty disables
	// CORS handling.
	AllowedOrigins []string
	// Metrics is mounted on GET /metrics when set.
	Metrics http.Handler
	// MaxBodyBytes bounds request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// NewRouter returns the HTTP surface for engine.
func NewRouter(engine *goSaaS.Engine, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	h := &handlers{engine: engine, maxBody: opts.MaxBodyBytes}
	sessions := engine.Sessions()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.Sessions(sessions, middleware.SessionOptions{
		SlidingRenewal: engine.Config().Session.SlidingRenewal,
	}))

	r.Get("/healthz", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/sign-in", h.form(engine.SignIn))
		r.Post("/sign-up", h.form(engine.SignUp))
		r.Post("/sign-out", h.form(engine.SignOut))

		r.Post("/account", h.form(engine.UpdateAccount))
		r.Post("/account/password", h.form(engine.UpdatePassword))
		r.Post("/account/delete", h.form(engine.DeleteAccount))

		r.Post("/team/members/remove", h.form(engine.RemoveTeamMember))
		r.Post("/team/invitations", h.form(engine.InviteTeamMember))

		r.Post("/billing/checkout", h.form(engine.Checkout))
		r.Post("/billing/portal", h.form(engine.CustomerPortal))

		r.Get("/user", h.user)
		r.Get("/team", h.team)
		r.Get("/activity", h.activity)
		r.Get("/pricing", h.pricing)

		r.Get("/stripe/checkout", h.completeCheckout)
		r.Post("/stripe/webhook", h.webhook)
	})

	r.With(middleware.RequireSession(sessions)).Get(goSaaS.DashboardPath, h.dashboard)

	return r
}
