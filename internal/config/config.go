// Package config provides configuration for the ProofPost API server and
// CLI. Values come from $PROOFPOST_CONFIG_DIR/config.yaml with PROOFPOST_*
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Signing   SigningConfig   `mapstructure:"signing"`
	Anchor    AnchorConfig    `mapstructure:"anchor"`
	Portal    PortalConfig    `mapstructure:"portal"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// AuthConfig holds API authentication settings. An empty JWT secret
// disables authentication.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Type     string         `mapstructure:"type"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the pgx connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// SigningConfig holds the receipt signing key. KeyJSON is a JWK for an
// EC P-256 private key; when empty an ephemeral key is generated at
// startup and receipts do not survive restarts verifiably anchored to the
// same identity.
type SigningConfig struct {
	KeyJSON string `mapstructure:"key_json"`
	KeyFile string `mapstructure:"key_file"`
}

// LoadKey returns the configured JWK, reading KeyFile when KeyJSON is
// empty. Returns empty string when no key is configured.
func (s SigningConfig) LoadKey() (string, error) {
	if s.KeyJSON != "" {
		return s.KeyJSON, nil
	}
	if s.KeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.KeyFile)
	if err != nil {
		return "", fmt.Errorf("read signing key file: %w", err)
	}
	return string(data), nil
}

// AnchorConfig holds the randomness beacon settings.
type AnchorConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	ChainHash string        `mapstructure:"chain_hash"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PortalConfig holds secure-portal delivery settings.
type PortalConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// RateLimitConfig guards the send endpoints.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// NATSConfig holds event publishing settings.
type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// ArchiveConfig holds OpenSearch archival settings.
type ArchiveConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	TLSSkipVerify bool   `mapstructure:"tls_skip_verify"`
	IndexPrefix   string `mapstructure:"index_prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from $PROOFPOST_CONFIG_DIR/config.yaml and
// PROOFPOST_* environment variables. A missing config file is not an
// error; defaults and environment carry the day.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configDir := os.Getenv("PROOFPOST_CONFIG_DIR")
	if configDir == "" {
		configDir = "/etc/proofpost"
	}
	v.SetConfigFile(configDir + "/config.yaml")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PROOFPOST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("database.type", "memory")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "proofpost")
	v.SetDefault("database.postgres.user", "proofpost")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("signing.key_json", "")
	v.SetDefault("signing.key_file", "")

	v.SetDefault("anchor.enabled", true)
	v.SetDefault("anchor.url", "https://api.drand.sh")
	v.SetDefault("anchor.chain_hash", "8990e7a9aaed2ffed73dbd7092123d6f289930540d7651336225dc172e51b2ce")
	v.SetDefault("anchor.timeout", "3s")

	v.SetDefault("portal.base_url", "https://portal.proofpost.io")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.redis_url", "redis://localhost:6379/0")
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.url", "https://localhost:9200")
	v.SetDefault("archive.username", "admin")
	v.SetDefault("archive.password", "")
	v.SetDefault("archive.tls_skip_verify", true)
	v.SetDefault("archive.index_prefix", "proofpost")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
