package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sabi-web/sabi/internal/auth/constants"
	"github.com/sabi-web/sabi/internal/auth/models"
	"github.com/sabi-web/sabi/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// downStore simulates an unreachable backend.
type downStore struct{}

func (downStore) Load(context.Context, string) (*session.Session, bool, error) {
	return nil, false, session.ErrStoreUnavailable
}
func (downStore) Store(context.Context, *session.Session) (string, error) {
	return "", session.ErrStoreUnavailable
}
func (downStore) Destroy(context.Context, *session.Session) error {
	return session.ErrStoreUnavailable
}
func (downStore) ClearAll(context.Context) error {
	return session.ErrStoreUnavailable
}

func loggedInStore(t *testing.T, user models.User) (session.Store, *http.Cookie) {
	t.Helper()
	store := session.NewMemoryStore()
	sess := session.New()
	require.NoError(t, sess.Set(session.UserKey, user))
	token, err := store.Store(context.Background(), sess)
	require.NoError(t, err)
	return store, &http.Cookie{Name: constants.CookieName, Value: token}
}

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserFromContext(r.Context())
		assert.Equal(t, wantUser, ok)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser_NoCookieRedirects(t *testing.T) {
	handler := RequireUser(session.NewMemoryStore(), "discord")(okHandler(t, true))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/protected", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/discord", rec.Header().Get("Location"))
}

func TestRequireUser_UnmatchedCookieRedirects(t *testing.T) {
	handler := RequireUser(session.NewMemoryStore(), "discord")(okHandler(t, true))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieName, Value: "no-record"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// A cookie with no matching record behaves exactly like no cookie.
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/discord", rec.Header().Get("Location"))
}

func TestRequireUser_StoreDownDegradesToRedirect(t *testing.T) {
	handler := RequireUser(downStore{}, "discord")(okHandler(t, true))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieName, Value: "whatever"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/discord", rec.Header().Get("Location"))
}

func TestRequireUser_MalformedPayloadRedirects(t *testing.T) {
	store := session.NewMemoryStore()
	sess := session.New()
	// A session without a "user" entry must never authenticate.
	token, err := store.Store(context.Background(), sess)
	require.NoError(t, err)

	handler := RequireUser(store, "discord")(okHandler(t, true))
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestRequireUser_Authenticated(t *testing.T) {
	store, cookie := loggedInStore(t, models.User{
		Username: "alice",
		Discord:  &models.DiscordProfile{ID: "1", Username: "alice", Discriminator: "0001"},
	})

	var got *models.User
	handler := RequireUser(store, "discord")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		got = user
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.NotNil(t, got.Discord)
	assert.Nil(t, got.Google)
}

func TestOptionalUser_AnonymousProceeds(t *testing.T) {
	handler := OptionalUser(session.NewMemoryStore())(okHandler(t, false))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalUser_AuthenticatedInjects(t *testing.T) {
	store, cookie := loggedInStore(t, models.User{Username: "bob", Google: &models.GoogleProfile{ID: "g"}})
	handler := OptionalUser(store)(okHandler(t, true))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSWithOrigins(t *testing.T) {
	handler := CORSWithOrigins([]string{"http://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
