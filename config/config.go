package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	OAuth       OAuthConfig
	Cloudinary  CloudinaryConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
	Marketplace MarketplaceConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type LogConfig struct {
	Level   string
	AppName string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type MarketplaceConfig struct {
	Currency        string
	DefaultPageSize int
	MaxPageSize     int
	MaxMessageLen   int
	AdminEmail      string
	AdminPassword   string
	Categories      []string
}

// Built-in JWT secrets. Load refuses them when server.env is production.
const (
	DefaultAccessSecret  = "change-me-in-production"
	DefaultRefreshSecret = "change-me-refresh"
)

var ErrDefaultSecrets = errors.New("config: jwt secrets must be set in production")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8099")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "servicehub:servicehub@tcp(localhost:3306)/servicehub?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.access_secret", DefaultAccessSecret)
	v.SetDefault("jwt.refresh_secret", DefaultRefreshSecret)
	v.SetDefault("jwt.access_expiry", 15*time.Minute)
	v.SetDefault("jwt.refresh_expiry", 168*time.Hour)
	v.SetDefault("jwt.issuer", "servicehub")

	v.SetDefault("oauth.google_client_id", "")
	v.SetDefault("oauth.google_client_secret", "")
	v.SetDefault("oauth.google_redirect_url", "http://localhost:8099/api/v1/auth/google/callback")

	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "servicehub/requests")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.app_name", "servicehub")

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("marketplace.currency", "KES")
	v.SetDefault("marketplace.default_page_size", 20)
	v.SetDefault("marketplace.max_page_size", 100)
	v.SetDefault("marketplace.max_message_len", 2000)
	v.SetDefault("marketplace.admin_email", "admin@servicehub.local")
	// no admin is seeded until a password is configured
	v.SetDefault("marketplace.admin_password", "")
	v.SetDefault("marketplace.categories", []string{"Cleaning", "Plumbing", "Electrical", "Moving", "Gardening"})
}

// Load reads defaults, then an optional config.yaml from . or ./config, then environment
// variables (server.port -> SERVER_PORT).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that are only safe outside production.
func (c *Config) Validate() error {
	if c.Server.Env != "production" {
		return nil
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" ||
		c.JWT.AccessSecret == DefaultAccessSecret || c.JWT.RefreshSecret == DefaultRefreshSecret {
		return ErrDefaultSecrets
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Env:          v.GetString("server.env"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("jwt.access_secret"),
			RefreshSecret: v.GetString("jwt.refresh_secret"),
			AccessExpiry:  v.GetDuration("jwt.access_expiry"),
			RefreshExpiry: v.GetDuration("jwt.refresh_expiry"),
			Issuer:        v.GetString("jwt.issuer"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     v.GetString("oauth.google_client_id"),
			GoogleClientSecret: v.GetString("oauth.google_client_secret"),
			GoogleRedirectURL:  v.GetString("oauth.google_redirect_url"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("cloudinary.cloud_name"),
			APIKey:    v.GetString("cloudinary.api_key"),
			APISecret: v.GetString("cloudinary.api_secret"),
			Folder:    v.GetString("cloudinary.folder"),
		},
		Log: LogConfig{
			Level:   v.GetString("log.level"),
			AppName: v.GetString("log.app_name"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		Marketplace: MarketplaceConfig{
			Currency:        v.GetString("marketplace.currency"),
			DefaultPageSize: v.GetInt("marketplace.default_page_size"),
			MaxPageSize:     v.GetInt("marketplace.max_page_size"),
			MaxMessageLen:   v.GetInt("marketplace.max_message_len"),
			AdminEmail:      v.GetString("marketplace.admin_email"),
			AdminPassword:   v.GetString("marketplace.admin_password"),
			Categories:      v.GetStringSlice("marketplace.categories"),
		},
	}
}

// Default returns the built-in configuration without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// PageSize clamps a requested page size to the configured bounds.
func (m MarketplaceConfig) PageSize(requested int) int {
	if requested <= 0 {
		return m.DefaultPageSize
	}
	if m.MaxPageSize > 0 && requested > m.MaxPageSize {
		return m.MaxPageSize
	}
	return requested
}
