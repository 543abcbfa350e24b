// Package middleware turns an inbound request's session cookie into an
// authenticated user, or a well-defined "go log in" outcome.
package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/sabi-web/sabi/internal/auth/constants"
	"github.com/sabi-web/sabi/internal/auth/models"
	"github.com/sabi-web/sabi/internal/logger"
	"github.com/sabi-web/sabi/internal/session"
	"go.uber.org/zap"
)

type userContextKey string

// UserContextKey is used to store the authenticated user in the request context
const UserContextKey userContextKey = "user"

// UserFromContext returns the authenticated user injected by RequireUser or
// OptionalUser, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// extractUser resolves the session cookie to a user. Every failure mode (no
// cookie, no matching record, unreachable store, malformed payload) yields
// nil; the store being down is logged so operators can tell the cases apart.
func extractUser(r *http.Request, store session.Store) *models.User {
	cookie, err := r.Cookie(constants.CookieName)
	if err != nil {
		return nil
	}

	sess, found, err := store.Load(r.Context(), cookie.Value)
	if err != nil {
		logger.Error("Session store unreachable during identity extraction", zap.Error(err))
		return nil
	}
	if !found {
		// A cookie without a matching record means "not logged in", not an error.
		return nil
	}

	var user models.User
	if err := sess.Get(session.UserKey, &user); err != nil {
		// Never trust partially written session state.
		logger.Warn("Session record without a usable user payload",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil
	}
	return &user
}

// RequireUser redirects unauthenticated requests to the default provider's
// login route and injects the user into the context otherwise.
func RequireUser(store session.Store, defaultProvider string) func(http.Handler) http.Handler {
	loginPath := constants.LoginPathPrefix + defaultProvider
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := extractUser(r, store)
			if user == nil {
				http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser injects the user into the context when a valid session exists
// and proceeds anonymously otherwise.
func OptionalUser(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := extractUser(r, store); user != nil {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSWithOrigins allows the configured origins for GET/POST requests.
func CORSWithOrigins(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(origins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
