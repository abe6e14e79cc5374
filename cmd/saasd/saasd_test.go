package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/memstore"
	"github.com/MrEthical07/goSaaS/session"
)

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("BASE_URL", "https://app.example.test")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test,")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, ":3000", s.HTTPAddr)
	assert.True(t, s.LogPretty)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, s.Origins())

	cfg := s.EngineConfig()
	assert.True(t, cfg.Session.SecureCookie)
	assert.NoError(t, cfg.Validate())
}

func TestBillingProviderSelection(t *testing.T) {
	p, err := newBillingProvider(&Settings{})
	require.NoError(t, err)
	assert.IsType(t, billing.Disabled{}, p)

	p, err = newBillingProvider(&Settings{StripeSecretKey: "sk_test_123", BaseURL: "http://localhost:3000"})
	require.NoError(t, err)
	assert.IsType(t, &billing.Stripe{}, p)
}

func TestSeedCreatesSignInReadyAdmin(t *testing.T) {
	s := &Settings{AuthSecret: "0123456789abcdef0123456789abcdef", BaseURL: "http://localhost:3000"}
	cfg := s.EngineConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1

	store := memstore.New()
	engine, err := goSaaS.New().WithConfig(cfg).WithStore(store).Build()
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	id, err := seed(ctx, engine, store, "test@test.com", "admin123", "Test Team")
	require.NoError(t, err)
	again, err := seed(ctx, engine, store, "test@test.com", "admin123", "Test Team")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	member, err := store.MembershipForUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.Role)

	req := httptest.NewRequest(http.MethodPost, "/api/sign-in", nil)
	rec := httptest.NewRecorder()
	sctx := session.WithCookies(req.Context(), rec, req)
	out, err := engine.SignIn(sctx, goSaaS.Input("email", "test@test.com", "password", "admin123"))
	require.NoError(t, err)
	assert.Equal(t, goSaaS.DashboardPath, out.Location)
}
