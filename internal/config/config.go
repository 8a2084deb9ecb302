// Package config loads and saves the workspace CLI configuration file.
// Configuration is stored as TOML in the user's config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/workspace-go/internal/google"
)

// DefaultDirName is the config directory under the user's home.
const DefaultDirName = ".workspace-go"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// RateLimitOverride is a partial per-API rate limit override. Zero fields
// keep the API defaults.
type RateLimitOverride struct {
	RequestsPerMinute        int `toml:"requests_per_minute,omitempty"`
	RequestsPerUserPerMinute int `toml:"requests_per_user_per_minute,omitempty"`
	BurstSize                int `toml:"burst_size,omitempty"`
	WindowSeconds            int `toml:"window_seconds,omitempty"`
}

// Config is the on-disk CLI configuration.
type Config struct {
	// AccessToken is the bearer credential used for all API calls. The CLI
	// does not run the sign-in handshake; tokens come from outside.
	AccessToken string `toml:"access_token,omitempty"`

	// RateLimits holds optional per-API overrides keyed by API name
	// (drive, sheets, calendar).
	RateLimits map[string]RateLimitOverride `toml:"rate_limits,omitempty"`
}

// DefaultPath returns ~/.workspace-go/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName, FileName), nil
}

// Load reads the config file at path. A missing file yields an empty
// config, not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config file, creating the directory if needed. The file
// holds a credential, so permissions are restricted to the owner.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ClientConfig converts the file config into a client config for one API,
// applying that API's rate limit override when present.
func (c *Config) ClientConfig(api string) google.ClientConfig {
	cfg := google.ClientConfig{AccessToken: c.AccessToken}

	if o, ok := c.RateLimits[api]; ok {
		cfg.RateLimit = &google.RateLimitProfile{
			RequestsPerMinute:        o.RequestsPerMinute,
			RequestsPerUserPerMinute: o.RequestsPerUserPerMinute,
			BurstSize:                o.BurstSize,
			Window:                   time.Duration(o.WindowSeconds) * time.Second,
		}
	}
	return cfg
}
