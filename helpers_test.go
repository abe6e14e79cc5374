package goSaaS

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/memstore"
	"github.com/MrEthical07/goSaaS/session"
)

const testIP = "203.0.113.7"

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.BcryptCost = 4
	cfg.RateLimit.MaxSignInFailures = 3
	return cfg
}

type harness struct {
	engine  *Engine
	store   *memstore.Store
	billing *fakeBilling
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	store := memstore.New()
	fb := &fakeBilling{}
	engine, err := New().WithConfig(cfg).WithStore(store).WithBilling(fb).Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return &harness{engine: engine, store: store, billing: fb}
}

// browser carries cookies between simulated requests.
type browser struct {
	cookies map[string]*http.Cookie
}

func newBrowser() *browser {
	return &browser{cookies: make(map[string]*http.Cookie)}
}

// do runs fn with a request context holding the browser's cookies and stores any
// Set-Cookie headers fn produced.
func (b *browser) do(fn func(ctx context.Context)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	ctx := session.WithCookies(req.Context(), rec, req)
	ctx = WithClientIP(ctx, testIP)

	fn(ctx)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) signedIn() bool {
	_, ok := b.cookies[session.DefaultCookieName]
	return ok
}

func (b *browser) clone() *browser {
	out := newBrowser()
	for k, v := range b.cookies {
		c := *v
		out.cookies[k] = &c
	}
	return out
}

type formAction func(ctx context.Context, in action.Input) (action.Outcome[FormState], error)

func (b *browser) submit(t *testing.T, fn formAction, pairs ...string) (action.Outcome[FormState], error) {
	t.Helper()
	var (
		out action.Outcome[FormState]
		err error
	)
	b.do(func(ctx context.Context) {
		out, err = fn(ctx, Input(pairs...))
	})
	return out, err
}

func (b *browser) mustSubmit(t *testing.T, fn formAction, pairs ...string) action.Outcome[FormState] {
	t.Helper()
	out, err := b.submit(t, fn, pairs...)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	return out
}

func (h *harness) signUp(t *testing.T, email, password string, extra ...string) *browser {
	t.Helper()
	b := newBrowser()
	pairs := append([]string{"email", email, "password", password}, extra...)
	out := b.mustSubmit(t, h.engine.SignUp, pairs...)
	if out.Kind != action.Redirect || out.Location != DashboardPath {
		t.Fatalf("sign-up outcome = %+v", out)
	}
	if !b.signedIn() {
		t.Fatal("sign-up did not set the session cookie")
	}
	return b
}

func expectRedirect(t *testing.T, out action.Outcome[FormState], location string) {
	t.Helper()
	if out.Kind != action.Redirect || out.Location != location {
		t.Fatalf("expected redirect to %s, got %+v", location, out)
	}
}

func expectFormError(t *testing.T, out action.Outcome[FormState], message string) {
	t.Helper()
	if out.Kind != action.Proceed || out.Value.Error != message {
		t.Fatalf("expected form error %q, got %+v", message, out)
	}
}

func expectFormSuccess(t *testing.T, out action.Outcome[FormState], message string) {
	t.Helper()
	if out.Kind != action.Proceed || out.Value.Success != message || out.Value.Error != "" {
		t.Fatalf("expected form success %q, got %+v", message, out)
	}
}

// fakeBilling records calls and returns canned answers.
type fakeBilling struct {
	checkoutRequests []billing.CheckoutRequest
	portalCustomers  []string
	result           billing.CheckoutResult
	event            *billing.SubscriptionEvent
	webhookErr       error
}

func (f *fakeBilling) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (string, error) {
	f.checkoutRequests = append(f.checkoutRequests, req)
	return "https://checkout.test/" + req.PriceID, nil
}

func (f *fakeBilling) CreatePortalSession(_ context.Context, customerID string) (string, error) {
	f.portalCustomers = append(f.portalCustomers, customerID)
	return "https://portal.test/" + customerID, nil
}

func (f *fakeBilling) ResolveCheckout(context.Context, string) (billing.CheckoutResult, error) {
	return f.result, nil
}

func (f *fakeBilling) ParseWebhook([]byte, string) (*billing.SubscriptionEvent, error) {
	return f.event, f.webhookErr
}

func (f *fakeBilling) ListPrices(context.Context) ([]billing.Price, error) {
	return []billing.Price{{ID: "price_base", ProductName: "Base", UnitAmount: 800, Currency: "usd", Interval: "month"}}, nil
}
