package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/memstore"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newServer(t *testing.T) (*httptest.Server, *goSaaS.Engine) {
	t.Helper()
	cfg := goSaaS.DefaultConfig()
	cfg.Session.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Session.SecureCookie = false
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := goSaaS.New().WithConfig(cfg).WithStore(memstore.New()).Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(NewRouter(engine, Options{Logger: zerolog.Nop(), Metrics: metrics}))
	t.Cleanup(srv.Close)
	return srv, engine
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:    t,
		base: srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) postForm(path string, values url.Values) (*http.Response, map[string]any) {
	c.t.Helper()
	resp, err := c.http.PostForm(c.base+path, values)
	require.NoError(c.t, err)
	return resp, decode(c.t, resp)
}

func (c *client) postJSON(path, body string) (*http.Response, map[string]any) {
	c.t.Helper()
	resp, err := c.http.Post(c.base+path, "application/json", strings.NewReader(body))
	require.NoError(c.t, err)
	return resp, decode(c.t, resp)
}

func (c *client) get(path string) (*http.Response, map[string]any) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	return resp, decode(c.t, resp)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return out
}

func TestSignUpFlowOverHTTP(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	resp, body := c.postForm("/api/sign-up", url.Values{"email": {"owner@example.test"}, "password": {"password123"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, goSaaS.DashboardPath, resp.Header.Get("Location"))
	assert.Equal(t, goSaaS.DashboardPath, body["redirect"])

	resp, body = c.get("/api/user")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "owner@example.test", body["email"])

	resp, body = c.get("/api/team")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "owner@example.test's Team", body["name"])
	assert.Len(t, body["teamMembers"], 1)

	resp, _ = c.get(goSaaS.DashboardPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = c.postForm("/api/sign-out", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", body["redirect"])

	resp, _ = c.get(goSaaS.DashboardPath)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))
}

func TestFormErrorsStayOK(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	resp, body := c.postJSON("/api/sign-in", `{"email":"owner@example.test","password":"short"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "String must contain at least 8 character(s)", body["error"])

	resp, body = c.postJSON("/api/sign-in", `{"email":"owner@example.test","password":"password123"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, goSaaS.MsgInvalidCredentials, body["error"])
	assert.Equal(t, "owner@example.test", body["fields"].(map[string]any)["email"])

	resp, _ = c.postJSON("/api/sign-in", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJSONNumbersAreNotRounded(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	resp, _ := c.postForm("/api/sign-up", url.Values{"email": {"owner@example.test"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := c.postJSON("/api/team/members/remove", `{"memberId": 2.7}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Expected number, received nan", body["error"])

	resp, body = c.postJSON("/api/team/members/remove", `{"memberId": 9007199254740993}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, goSaaS.MsgMemberNotFound, body["error"])

	_, body = c.get("/api/team")
	assert.Len(t, body["teamMembers"], 1)
}

func TestFaultsMapToStatusCodes(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	resp, body := c.postForm("/api/account", url.Values{"name": {"Ada"}, "email": {"ada@example.test"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "User is not authenticated", body["error"])

	resp, _ = c.get("/api/team")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = c.get("/api/pricing")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = c.postJSON("/api/stripe/webhook", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body = c.postForm("/api/billing/checkout", url.Values{"priceId": {"price_1"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", body["redirect"])
}

func TestUserIsNullWhenSignedOut(t *testing.T) {
	srv, _ := newServer(t)
	resp, err := http.Get(srv.URL + "/api/user")
	require.NoError(t, err)
	defer resp.Body.Close()

	var v any = "unset"
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, v)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)

	resp, body := c.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["store"])

	resp, _ = c.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
