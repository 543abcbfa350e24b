package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sabi-web/sabi/internal/auth"
	"github.com/sabi-web/sabi/internal/auth/providers"
	"github.com/sabi-web/sabi/internal/config"
	"github.com/sabi-web/sabi/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the full stack against a fake identity provider and a
// miniredis-backed session store.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth2/token":
			_, _ = w.Write([]byte(`{"access_token":"token-1","token_type":"Bearer"}`))
		case "/users/@me":
			_, _ = w.Write([]byte(`{"id":"1","username":"alice","discriminator":"0001","avatar":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(provider.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Redis:  config.RedisConfig{Addr: mr.Addr()},
		OAuth: config.OAuthConfig{
			DefaultProvider: "discord",
			Discord: &config.ProviderConfig{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				RedirectURL:  "http://127.0.0.1:3030/auth/discord/authorized",
				AuthURL:      provider.URL + "/oauth2/authorize",
				TokenURL:     provider.URL + "/oauth2/token",
				ProfileURL:   provider.URL + "/users/@me",
			},
		},
	}

	registry, err := providers.NewRegistry(cfg)
	require.NoError(t, err)

	return NewServer(cfg, auth.NewService(cfg, registry, store)).Handler()
}

func TestIndexAnonymous(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You're not logged in")
}

func TestHealth(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}

func TestUnknownRouteIs404(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/no/such/path", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to see here")
}

func TestProtectedRedirectsWhenAnonymous(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/protected", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/discord", rec.Header().Get("Location"))
}

func TestLoginFlowEndToEnd(t *testing.T) {
	handler := newTestServer(t)

	// Callback with a valid code establishes the session.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/auth/discord/authorized?code=abc&state=s", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "SESSION" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	// The protected route now greets the user.
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	// So does the index.
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Hey alice!")

	// After logout the protected route redirects again.
	req = httptest.NewRequest("GET", "/auth/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}
