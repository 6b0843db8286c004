// Package config provides configuration management for the Loopline admin
// backend and console. It handles loading and parsing YAML configuration
// files, and provides structured access to application settings including
// server port, backend base URL, credential persistence, token lifetimes,
// and logging behavior.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is used by the console when no base-url is configured.
const DefaultBaseURL = "http://127.0.0.1:8317"

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Port is the network port on which the admin backend listens.
	Port int `yaml:"port" json:"port"`

	// BaseURL is the backend base URL used by the console and the SDK.
	// When empty, DefaultBaseURL applies.
	BaseURL string `yaml:"base-url" json:"base-url"`

	// CredentialsFile is the path of the JSON file the console persists the
	// access/refresh token pair to. Relative paths resolve against the
	// process working directory.
	CredentialsFile string `yaml:"credentials-file" json:"credentials-file"`

	// ProxyURL is the URL of an optional proxy server to use for outbound
	// requests. Supports socks5, http, and https schemes.
	ProxyURL string `yaml:"proxy-url" json:"proxy-url"`

	// RequestTimeoutSeconds bounds every outbound SDK request. <= 0 selects
	// the default of 30 seconds.
	RequestTimeoutSeconds int `yaml:"request-timeout-seconds" json:"request-timeout-seconds"`

	// Debug enables debug-level logging and gin debug mode.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile redirects application logs from stdout to rotating
	// files under the logs directory.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogsMaxTotalSizeMB caps the total size of the logs directory.
	// <= 0 disables cleanup.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb" json:"logs-max-total-size-mb"`

	// PostgresDSN selects the PostgreSQL-backed store when non-empty.
	// When empty the server runs on the in-memory store.
	PostgresDSN string `yaml:"postgres-dsn" json:"postgres-dsn"`

	// Auth groups token issuance settings for the backend.
	Auth AuthConfig `yaml:"auth" json:"auth"`
}

// AuthConfig holds token issuance settings for the admin backend.
type AuthConfig struct {
	// JWTSecret signs access tokens. Required when running the server.
	JWTSecret string `yaml:"jwt-secret" json:"jwt-secret"`

	// AccessTokenTTL is the access token lifetime. Defaults to 15m.
	AccessTokenTTL time.Duration `yaml:"access-token-ttl" json:"access-token-ttl"`

	// RefreshTokenTTL is the refresh token lifetime. Defaults to 168h (7d).
	RefreshTokenTTL time.Duration `yaml:"refresh-token-ttl" json:"refresh-token-ttl"`

	// SeedAdminEmail and SeedAdminPassword create a bootstrap administrator
	// account on first start when the store has none.
	SeedAdminEmail    string `yaml:"seed-admin-email" json:"seed-admin-email"`
	SeedAdminPassword string `yaml:"seed-admin-password" json:"seed-admin-password"`
}

// LoadConfig reads and parses the configuration file at the given path.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads the configuration file, tolerating a missing file
// when optional is true by returning a default configuration instead.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s failed: %w", configFile, err)
	}

	cfg := &Config{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s failed: %w", configFile, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8317
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if strings.TrimSpace(c.CredentialsFile) == "" {
		c.CredentialsFile = filepath.Join(defaultStateDir(), "credentials.json")
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = 30
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}

// RequestTimeout returns the configured outbound request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".loopline-admin"
	}
	return filepath.Join(home, ".loopline-admin")
}
