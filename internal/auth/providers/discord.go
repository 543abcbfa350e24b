package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sabi-web/sabi/internal/auth/models"
	"github.com/sabi-web/sabi/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const discordProfileURL = "https://discord.com/api/users/@me"

// DefaultDiscordScopes only asks for the user object, not email or guilds.
var DefaultDiscordScopes = []string{"identify"}

type DiscordProvider struct {
	oauth2Config *oauth2.Config
	profileURL   string
}

func NewDiscordProvider(cfg *config.ProviderConfig) (*DiscordProvider, error) {
	endpoint := endpoints.Discord
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultDiscordScopes
	}

	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = discordProfileURL
	}

	return &DiscordProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		profileURL: profileURL,
	}, nil
}

func (p *DiscordProvider) Name() string {
	return "discord"
}

func (p *DiscordProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *DiscordProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := outboundContext(ctx)
	defer cancel()
	return p.oauth2Config.Exchange(ctx, code)
}

func (p *DiscordProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*models.User, error) {
	ctx, cancel := outboundContext(ctx)
	defer cancel()

	client := p.oauth2Config.Client(ctx, token)
	resp, err := client.Get(p.profileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord profile: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord profile request failed with status %d", resp.StatusCode)
	}

	var profile models.DiscordProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode discord profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("discord profile response missing user id")
	}

	return models.UserFromDiscord(profile), nil
}
