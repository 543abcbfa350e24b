package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sabi-web/sabi/internal/auth/models"
	"github.com/sabi-web/sabi/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleProfileURL = "https://openidconnect.googleapis.com/v1/userinfo"

var DefaultGoogleScopes = []string{"openid", "profile", "email"}

type GoogleProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	profileURL   string
}

// NewGoogleProvider builds the Google client. When an issuer is configured,
// OIDC discovery runs once here and ID tokens from the exchange are verified
// instead of calling the userinfo endpoint.
func NewGoogleProvider(cfg *config.ProviderConfig) (*GoogleProvider, error) {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultGoogleScopes
	}

	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = googleProfileURL
	}

	p := &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		profileURL: profileURL,
	}

	if cfg.Issuer != "" {
		provider, err := oidc.NewProvider(context.Background(), cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		p.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	}

	return p, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := outboundContext(ctx)
	defer cancel()
	return p.oauth2Config.Exchange(ctx, code)
}

func (p *GoogleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*models.User, error) {
	ctx, cancel := outboundContext(ctx)
	defer cancel()

	if p.verifier != nil {
		if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" {
			return p.profileFromIDToken(ctx, rawIDToken)
		}
	}
	return p.profileFromUserinfo(ctx, token)
}

func (p *GoogleProvider) profileFromIDToken(ctx context.Context, rawIDToken string) (*models.User, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token claims: %w", err)
	}

	return models.UserFromGoogle(models.GoogleProfile{
		ID:      claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}), nil
}

func (p *GoogleProvider) profileFromUserinfo(ctx context.Context, token *oauth2.Token) (*models.User, error) {
	client := p.oauth2Config.Client(ctx, token)
	resp, err := client.Get(p.profileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var userInfo struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if userInfo.Sub == "" {
		return nil, fmt.Errorf("userinfo response missing subject")
	}

	return models.UserFromGoogle(models.GoogleProfile{
		ID:      userInfo.Sub,
		Email:   userInfo.Email,
		Name:    userInfo.Name,
		Picture: userInfo.Picture,
	}), nil
}
