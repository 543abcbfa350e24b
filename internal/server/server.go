// Package server assembles the HTTP surface: index, health, protected demo
// route, greeting endpoints and the OAuth flow.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sabi-web/sabi/internal/auth"
	"github.com/sabi-web/sabi/internal/auth/middleware"
	"github.com/sabi-web/sabi/internal/config"
	"github.com/sabi-web/sabi/internal/greeting"
	"github.com/sabi-web/sabi/internal/logger"
	"github.com/sabi-web/sabi/internal/utils"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server serves the web application over HTTP.
type Server struct {
	config   *config.Config
	auth     *auth.Service
	greeting *greeting.Handler
}

// NewServer creates the server from its collaborators.
func NewServer(cfg *config.Config, authService *auth.Service) *Server {
	if cfg == nil {
		logger.Fatal("Config cannot be nil")
	}
	if authService == nil {
		logger.Fatal("Auth service cannot be nil")
	}

	return &Server{
		config:   cfg,
		auth:     authService,
		greeting: greeting.NewHandler(config.Version()),
	}
}

// Providers lists the configured identity provider names.
func (s *Server) Providers() []string {
	return s.auth.Registry().Names()
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", s.auth.OptionalUser()(http.HandlerFunc(s.handleIndex)))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /protected", s.auth.RequireUser()(http.HandlerFunc(s.handleProtected)))

	s.auth.RegisterRoutes(mux)
	s.greeting.RegisterRoutes(mux)

	// Everything that matches nothing else.
	mux.HandleFunc("/", s.handleNotFound)

	return s.auth.WrapWithCors(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		fmt.Fprintf(w, "Hey %s! You're logged in!\nYou may now access `/protected`.\nLog out with `/auth/logout`.\n", user.Username)
		return
	}
	fmt.Fprint(w, "You're not logged in.\nVisit `/auth/discord` or `/auth/google` to do so.\n")
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		// RequireUser guarantees a user; reaching here means miswired routes.
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "Welcome to the protected area :)\nHere's your info:\n%+v\n", *user)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "OK"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "nothing to see here", http.StatusNotFound)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Server.Address()
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting server", zap.String("address", addr))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// Module provides the HTTP server dependencies
var Module = fx.Module("server",
	fx.Provide(
		NewServer,
	),
)
