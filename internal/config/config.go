package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath        = "config.toml"
	DefaultHTTPAddr          = ":4000"
	DefaultGraphBaseURL      = "https://graph.facebook.com"
	DefaultGraphVersion      = "v19.0"
	DefaultOAuthDialogURL    = "https://www.facebook.com/v19.0/dialog/oauth"
	DefaultJWTExpiresIn      = "24h"
	DefaultSessionTTLMinutes = 30
	DefaultSweepSchedule     = "*/5 * * * *"
	DefaultPGHost            = "127.0.0.1"
	DefaultPGPort            = 5432
	DefaultPGUser            = "postgres"
	DefaultPGDatabase        = "inboxd"
	DefaultPGSSLMode         = "disable"
	DefaultPageFilter        = "instagram"
	DefaultSubscribeCred     = "page"
	DefaultGatewayTimeout    = 15
	DefaultResponderTimeout  = 20
	DefaultTermsVersion      = "1.0.0"
)

type Config struct {
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
	Auth       AuthConfig       `toml:"auth"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Meta       MetaConfig       `toml:"meta"`
	Responder  ResponderConfig  `toml:"responder"`
	Frontend   FrontendConfig   `toml:"frontend"`
	Onboarding OnboardingConfig `toml:"onboarding"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	PublicURL      string   `toml:"public_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// MetaConfig holds the Graph API application credentials and the webhook
// verify token shared with the platform.
type MetaConfig struct {
	AppID           string `toml:"app_id"`
	AppSecret       string `toml:"app_secret"`
	GraphBaseURL    string `toml:"graph_base_url"`
	GraphVersion    string `toml:"graph_version"`
	OAuthDialogURL  string `toml:"oauth_dialog_url"`
	VerifyToken     string `toml:"verify_token"`
	SystemUserToken string `toml:"system_user_token"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Timeout returns the bounded timeout applied to every Graph API call.
func (c MetaConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultGatewayTimeout
	}
	return time.Duration(seconds) * time.Second
}

// ResponderConfig points at the external AI responder service.
type ResponderConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (c ResponderConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultResponderTimeout
	}
	return time.Duration(seconds) * time.Second
}

type FrontendConfig struct {
	BaseURL string `toml:"base_url"`
}

// OnboardingConfig selects the page eligibility filter, the webhook
// subscription credential source, and the pending-session lifetime.
type OnboardingConfig struct {
	SessionTTLMinutes   int    `toml:"session_ttl_minutes"`
	SweepSchedule       string `toml:"sweep_schedule"`
	PageFilter          string `toml:"page_filter"`          // "instagram" | "business_owner"
	SubscribeCredential string `toml:"subscribe_credential"` // "page" | "app"
	DefaultSheetID      string `toml:"default_sheet_id"`
	TermsVersion        string `toml:"terms_version"`
}

// SessionTTL returns the pending-session lifetime.
func (c OnboardingConfig) SessionTTL() time.Duration {
	minutes := c.SessionTTLMinutes
	if minutes <= 0 {
		minutes = DefaultSessionTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Meta: MetaConfig{
			GraphBaseURL:   DefaultGraphBaseURL,
			GraphVersion:   DefaultGraphVersion,
			OAuthDialogURL: DefaultOAuthDialogURL,
		},
		Onboarding: OnboardingConfig{
			SessionTTLMinutes:   DefaultSessionTTLMinutes,
			SweepSchedule:       DefaultSweepSchedule,
			PageFilter:          DefaultPageFilter,
			SubscribeCredential: DefaultSubscribeCred,
			TermsVersion:        DefaultTermsVersion,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
