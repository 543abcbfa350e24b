// Package auth wires the OAuth flow handlers, the provider registry and the
// identity-extraction middleware into one service.
package auth

import (
	"net/http"

	"github.com/sabi-web/sabi/internal/auth/handlers"
	"github.com/sabi-web/sabi/internal/auth/middleware"
	"github.com/sabi-web/sabi/internal/auth/providers"
	"github.com/sabi-web/sabi/internal/config"
	"github.com/sabi-web/sabi/internal/session"
)

// Service represents the OAuth service
type Service struct {
	config   *config.Config
	registry *providers.Registry
	store    session.Store
	handler  *handlers.Handler
}

// NewService creates a new OAuth service
func NewService(cfg *config.Config, registry *providers.Registry, store session.Store) *Service {
	return &Service{
		config:   cfg,
		registry: registry,
		store:    store,
		handler:  handlers.NewHandler(registry, store),
	}
}

// RegisterRoutes registers all auth-related routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/logout", s.handler.HandleLogout)
	mux.HandleFunc("GET /auth/{provider}", s.handler.HandleLogin)
	mux.HandleFunc("GET /auth/{provider}/authorized", s.handler.HandleCallback)
}

// RequireUser returns middleware that redirects unauthenticated requests to
// the default provider's login route.
func (s *Service) RequireUser() func(http.Handler) http.Handler {
	return middleware.RequireUser(s.store, s.config.OAuth.DefaultProvider)
}

// OptionalUser returns middleware that injects the user when present and
// proceeds anonymously otherwise.
func (s *Service) OptionalUser() func(http.Handler) http.Handler {
	return middleware.OptionalUser(s.store)
}

// WrapWithCors wraps the handler with the configured CORS policy.
func (s *Service) WrapWithCors(handler http.Handler) http.Handler {
	return middleware.CORSWithOrigins(s.config.Server.AllowOrigins)(handler)
}

// Registry returns the configured provider registry
func (s *Service) Registry() *providers.Registry {
	return s.registry
}
