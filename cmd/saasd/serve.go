package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/httpapi"
	"github.com/MrEthical07/goSaaS/memstore"
	"github.com/MrEthical07/goSaaS/metrics/export/prometheus"
	"github.com/MrEthical07/goSaaS/postgres"
)

func newServeCmd(a *app) *cobra.Command {
	var memory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.settings, memory)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "use the in-memory store and an embedded Redis instead of POSTGRES_URL and REDIS_URL")
	return cmd
}

func serve(ctx context.Context, s *Settings, memory bool) error {
	logger := s.Logger()

	var (
		store domain.Store
		rdb   redis.UniversalClient
	)
	if memory {
		mr, err := miniredis.Run()
		if err != nil {
			return err
		}
		defer mr.Close()
		store = memstore.New()
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		logger.Warn().Msg("running with in-memory storage; data is lost on exit")
	} else {
		if s.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required (or pass --memory)")
		}
		pool, err := postgres.Connect(ctx, s.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.New(pool)

		if s.RedisURL != "" {
			opts, err := redis.ParseURL(s.RedisURL)
			if err != nil {
				return err
			}
			rdb = redis.NewClient(opts)
		}
	}
	if rdb != nil {
		defer rdb.Close()
	}

	provider, err := newBillingProvider(s)
	if err != nil {
		return err
	}

	b := goSaaS.New().
		WithConfig(s.EngineConfig()).
		WithStore(store).
		WithBilling(provider).
		WithLogger(logger)
	if rdb != nil {
		b = b.WithRedis(rdb)
	}
	engine, err := b.Build()
	if err != nil {
		return err
	}
	defer engine.Close()
	logger.Info().Object("security", engine.SecurityReport()).Msg("engine ready")

	srv := &http.Server{
		Addr: s.HTTPAddr,
		Handler: httpapi.NewRouter(engine, httpapi.Options{
			Logger:         logger,
			AllowedOrigins: s.Origins(),
			Metrics:        prometheus.NewExporter(engine).Handler(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", s.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newBillingProvider(s *Settings) (billing.Provider, error) {
	if s.StripeSecretKey == "" {
		return billing.Disabled{}, nil
	}
	return billing.NewStripe(billing.StripeConfig{
		SecretKey:       s.StripeSecretKey,
		WebhookSecret:   s.StripeWebhookSecret,
		BaseURL:         s.BaseURL,
		TrialPeriodDays: 14,
	})
}

func logSetup(logger zerolog.Logger, what string, err error) error {
	if err != nil {
		logger.Error().Err(err).Msg(what)
	}
	return err
}
