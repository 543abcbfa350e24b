package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("sabi version %s, commit %s, built at %s", version, commit, date)
}

// Version returns the bare version string
func Version() string {
	return version
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	OAuth   OAuthConfig   `mapstructure:"oauth" yaml:"oauth"`
}

type ServerConfig struct {
	Host         string   `mapstructure:"host" yaml:"host"`
	Port         int      `mapstructure:"port" yaml:"port"`
	AllowOrigins []string `mapstructure:"allow_origins" yaml:"allow_origins"`
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggingConfig struct {
	Level             string `mapstructure:"level" yaml:"level"`
	Format            string `mapstructure:"format" yaml:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace" yaml:"disable_stacktrace"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// OAuthConfig holds one client configuration per supported identity provider.
// A provider with no client id is treated as not configured.
type OAuthConfig struct {
	DefaultProvider string          `mapstructure:"default_provider" yaml:"default_provider"`
	Discord         *ProviderConfig `mapstructure:"discord" yaml:"discord"`
	Google          *ProviderConfig `mapstructure:"google" yaml:"google"`
}

// ProviderConfig is immutable once loaded. AuthURL, TokenURL and ProfileURL
// default to the provider's well-known endpoints and only need to be set for
// testing or proxies.
type ProviderConfig struct {
	ClientID     string   `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string   `mapstructure:"client_secret" yaml:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url" yaml:"redirect_url"`
	AuthURL      string   `mapstructure:"auth_url" yaml:"auth_url"`
	TokenURL     string   `mapstructure:"token_url" yaml:"token_url"`
	ProfileURL   string   `mapstructure:"profile_url" yaml:"profile_url"`
	Issuer       string   `mapstructure:"issuer" yaml:"issuer"`
	Scopes       []string `mapstructure:"scopes" yaml:"scopes"`
}

func (p *ProviderConfig) validate(name string) error {
	if p.ClientID == "" {
		return fmt.Errorf("oauth.%s.client_id is required", name)
	}
	if p.ClientSecret == "" {
		return fmt.Errorf("oauth.%s.client_secret is required", name)
	}
	if p.RedirectURL == "" {
		return fmt.Errorf("oauth.%s.redirect_url is required", name)
	}
	for field, raw := range map[string]string{
		"redirect_url": p.RedirectURL,
		"auth_url":     p.AuthURL,
		"token_url":    p.TokenURL,
		"profile_url":  p.ProfileURL,
	} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("oauth.%s.%s is not a valid URL: %w", name, field, err)
		}
	}
	return nil
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("host", "", "Server host")
	pflag.Int("port", 0, "Server port")
	pflag.String("redis-addr", "", "Redis address (host:port)")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("SABI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/sabi")

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional; everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if host := viper.GetString("host"); host != "" {
		config.Server.Host = host
	}
	if port := viper.GetInt("port"); port != 0 {
		config.Server.Port = port
	}
	if addr := viper.GetString("redis-addr"); addr != "" {
		config.Redis.Addr = addr
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the configuration can actually serve logins. A
// misconfigured provider can never succeed at runtime, so failure here must
// prevent the process from starting.
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required, pass --redis-addr or SABI_REDIS_ADDR")
	}

	configured := 0
	if c.OAuth.Discord != nil && c.OAuth.Discord.ClientID != "" {
		if err := c.OAuth.Discord.validate("discord"); err != nil {
			return err
		}
		configured++
	}
	if c.OAuth.Google != nil && c.OAuth.Google.ClientID != "" {
		if err := c.OAuth.Google.validate("google"); err != nil {
			return err
		}
		configured++
	}
	if configured == 0 {
		return fmt.Errorf("at least one oauth provider must be configured")
	}

	switch c.OAuth.DefaultProvider {
	case "discord":
		if c.OAuth.Discord == nil || c.OAuth.Discord.ClientID == "" {
			return fmt.Errorf("oauth.default_provider is discord but discord is not configured")
		}
	case "google":
		if c.OAuth.Google == nil || c.OAuth.Google.ClientID == "" {
			return fmt.Errorf("oauth.default_provider is google but google is not configured")
		}
	default:
		return fmt.Errorf("unsupported oauth.default_provider: %s", c.OAuth.DefaultProvider)
	}

	return nil
}

// Redacted returns a copy safe for printing: secrets are masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Redis.Password != "" {
		out.Redis.Password = "****"
	}
	redact := func(p *ProviderConfig) *ProviderConfig {
		if p == nil {
			return nil
		}
		cp := *p
		if cp.ClientSecret != "" {
			cp.ClientSecret = "****"
		}
		return &cp
	}
	out.OAuth.Discord = redact(c.OAuth.Discord)
	out.OAuth.Google = redact(c.OAuth.Google)
	return out
}

func setDefaults() {
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 3030)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("oauth.default_provider", "discord")

	// Register every provider key so values supplied purely through the
	// environment survive viper.Unmarshal.
	for _, provider := range []string{"discord", "google"} {
		for _, field := range []string{
			"client_id", "client_secret", "redirect_url",
			"auth_url", "token_url", "profile_url", "issuer",
		} {
			viper.SetDefault(fmt.Sprintf("oauth.%s.%s", provider, field), "")
		}
	}
}
