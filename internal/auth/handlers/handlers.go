// Package handlers implements the HTTP entry points of the OAuth
// authorization-code flow: login redirect, provider callback, and logout.
package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sabi-web/sabi/internal/auth/constants"
	"github.com/sabi-web/sabi/internal/auth/providers"
	"github.com/sabi-web/sabi/internal/logger"
	"github.com/sabi-web/sabi/internal/session"
	"go.uber.org/zap"
)

// Handler orchestrates the two-leg OAuth dance against the provider registry
// and persists the outcome in the session store.
type Handler struct {
	registry *providers.Registry
	store    session.Store
}

// NewHandler creates a new Handler instance
func NewHandler(registry *providers.Registry, store session.Store) *Handler {
	return &Handler{
		registry: registry,
		store:    store,
	}
}

// HandleLogin handles GET /auth/{provider}: it generates a fresh anti-forgery
// state and redirects to the provider's authorization endpoint. No local state
// is persisted before the redirect.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	provider, err := h.registry.Get(r.PathValue("provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// The state is generated per attempt but not verified on callback; see
	// the project design notes before relying on it for CSRF protection.
	state := uuid.NewString()

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback handles GET /auth/{provider}/authorized. On success it
// persists a session holding the canonical user and sets the session cookie.
// Every failure collapses to a redirect to the landing page with no cookie;
// provider errors are logged, never surfaced to the browser.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	provider, err := h.registry.Get(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		logger.Warn("OAuth callback without authorization code", zap.String("provider", name))
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}

	token, err := provider.Exchange(r.Context(), code)
	if err != nil {
		logger.Error("Failed to exchange authorization code",
			zap.String("provider", name),
			zap.String("step", "token_exchange"),
			zap.Error(err),
		)
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}

	user, err := provider.FetchProfile(r.Context(), token)
	if err != nil {
		logger.Error("Failed to fetch user profile",
			zap.String("provider", name),
			zap.String("step", "profile_fetch"),
			zap.Error(err),
		)
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}

	sess := session.New()
	if err := sess.Set(session.UserKey, user); err != nil {
		logger.Error("Failed to serialize user into session",
			zap.String("provider", name),
			zap.Error(err),
		)
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}

	cookieValue, err := h.store.Store(r.Context(), sess)
	if err != nil {
		logger.Error("Failed to persist session",
			zap.String("provider", name),
			zap.String("step", "session_store"),
			zap.Error(err),
		)
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.CookieName,
		Value:    cookieValue,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("User logged in",
		zap.String("provider", name),
		zap.String("username", user.Username),
	)
	http.Redirect(w, r, constants.LandingPath, http.StatusFound)
}

// HandleLogout handles GET /auth/logout. Destroying a session that no longer
// exists is a no-op, so a second logout is just a redirect.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.CookieName)
	if err != nil {
		// No session cookie, nothing to do.
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}

	sess, found, err := h.store.Load(r.Context(), cookie.Value)
	if err != nil {
		logger.Error("Failed to load session during logout", zap.Error(err))
		http.Redirect(w, r, constants.LandingPath, http.StatusFound)
		return
	}
	if found {
		if err := h.store.Destroy(r.Context(), sess); err != nil {
			logger.Error("Failed to destroy session", zap.Error(err))
		}
	}

	http.Redirect(w, r, constants.LandingPath, http.StatusFound)
}
