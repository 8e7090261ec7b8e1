// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Cable    CableConfig    `yaml:"cable"`
	Features FeaturesConfig `yaml:"features"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the gateway HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig configures API key authentication on the gateway.
// KeyHashes are bcrypt hashes of the accepted keys; an empty list disables
// auth.
type AuthConfig struct {
	KeyHashes  []string `yaml:"key_hashes,omitempty"`
	BcryptCost int      `yaml:"bcrypt_cost,omitempty"`
}

// CableConfig configures the outbound HTTP cable used by the client side
// (the call command and embedded remotes).
type CableConfig struct {
	Endpoint string            `yaml:"endpoint"`
	APIKey   string            `yaml:"api_key,omitempty"`
	Timeout  time.Duration     `yaml:"timeout,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}

// FeaturesConfig locates feature definition files.
type FeaturesConfig struct {
	Dir string `yaml:"dir"`
}

// DatabaseConfig configures the call log database. An empty DSN disables
// the call log.
type DatabaseConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration from WIREGATE_* environment variables
// alone (for container deployments without a config file).
func FromEnv() (*Config, error) {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasEnvConfig reports whether any WIREGATE_* override is set.
func HasEnvConfig() bool {
	for _, key := range []string{
		"WIREGATE_SERVER_PORT",
		"WIREGATE_CABLE_ENDPOINT",
		"WIREGATE_FEATURES_DIR",
		"WIREGATE_DATABASE_DSN",
		"WIREGATE_LOG_LEVEL",
	} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WIREGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WIREGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WIREGATE_CABLE_ENDPOINT"); v != "" {
		cfg.Cable.Endpoint = v
	}
	if v := os.Getenv("WIREGATE_CABLE_API_KEY"); v != "" {
		cfg.Cable.APIKey = v
	}
	if v := os.Getenv("WIREGATE_FEATURES_DIR"); v != "" {
		cfg.Features.Dir = v
	}
	if v := os.Getenv("WIREGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("WIREGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WIREGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// setDefaults fills in defaults for unset fields.
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Cable.Timeout == 0 {
		cfg.Cable.Timeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}

// Logger builds a zerolog logger from the logging configuration.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.Logging.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
