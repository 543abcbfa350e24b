// Package providers implements the per-provider half of the OAuth2
// authorization-code flow: building authorization URLs, exchanging codes and
// fetching profiles. Adding a provider means adding one config and one profile
// mapping; the flow logic never changes.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sabi-web/sabi/internal/auth/models"
	"github.com/sabi-web/sabi/internal/config"
	"golang.org/x/oauth2"
)

// ErrUnknownProvider indicates a login was requested for a provider that is
// not configured.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// outboundTimeout bounds every call to a provider's token or profile endpoint.
// A hung provider must not hold a request handler indefinitely.
const outboundTimeout = 10 * time.Second

// Provider is the uniform two-step contract every identity provider satisfies.
type Provider interface {
	// Name returns the provider identifier used in routes ("discord", "google").
	Name() string

	// AuthCodeURL builds the authorization redirect target, carrying the
	// requested scopes and the given anti-forgery state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchProfile calls the provider's profile endpoint with the bearer token
	// and maps the result into the canonical identity.
	FetchProfile(ctx context.Context, token *oauth2.Token) (*models.User, error)
}

// Registry resolves provider identifiers to constructed clients. It is built
// once at startup and read-only afterwards, so unsynchronized concurrent reads
// are safe.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry constructs a client per configured provider. Any construction
// failure is returned; a misconfigured provider can never succeed at runtime,
// so the caller treats this as fatal.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	reg := &Registry{providers: make(map[string]Provider)}

	if c := cfg.OAuth.Discord; c != nil && c.ClientID != "" {
		p, err := NewDiscordProvider(c)
		if err != nil {
			return nil, fmt.Errorf("configure discord provider: %w", err)
		}
		reg.providers[p.Name()] = p
	}
	if c := cfg.OAuth.Google; c != nil && c.ClientID != "" {
		p, err := NewGoogleProvider(c)
		if err != nil {
			return nil, fmt.Errorf("configure google provider: %w", err)
		}
		reg.providers[p.Name()] = p
	}

	if len(reg.providers) == 0 {
		return nil, errors.New("no oauth providers configured")
	}
	return reg, nil
}

// Get resolves a provider identifier to its client.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists the configured provider identifiers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// outboundContext attaches a bounded HTTP client for the oauth2 package to
// use, and returns a context that expires with it.
func outboundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: outboundTimeout})
	return context.WithTimeout(ctx, outboundTimeout)
}
