// Package models defines the canonical authenticated identity and the
// provider-specific profiles it is built from.
package models

// DiscordProfile is the user record returned by Discord's users/@me endpoint.
// https://discord.com/developers/docs/resources/user#user-object-user-structure
type DiscordProfile struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
}

// GoogleProfile is the subset of OIDC userinfo claims we keep.
type GoogleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// User is the canonical identity stored in the session. Exactly one provider
// profile is populated per login; Username comes from whichever provider
// authenticated the user.
type User struct {
	Username string          `json:"username"`
	Discord  *DiscordProfile `json:"discord,omitempty"`
	Google   *GoogleProfile  `json:"google,omitempty"`
}

// UserFromDiscord builds the canonical identity from a Discord profile.
func UserFromDiscord(p DiscordProfile) *User {
	return &User{
		Username: p.Username,
		Discord:  &p,
	}
}

// UserFromGoogle builds the canonical identity from a Google profile. The
// display name falls back to the email address when Google returns no name.
func UserFromGoogle(p GoogleProfile) *User {
	username := p.Name
	if username == "" {
		username = p.Email
	}
	return &User{
		Username: username,
		Google:   &p,
	}
}
