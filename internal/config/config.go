package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Addr        string         `yaml:"addr,omitempty"`
	FrontendDir string         `yaml:"frontend_dir,omitempty"`
	DBPath      string         `yaml:"db_path,omitempty"`
	UserID      string         `yaml:"user_id,omitempty"` // profile shown on the dashboard
	Cache       CacheConfig    `yaml:"cache,omitempty"`
	Location    LocationConfig `yaml:"location,omitempty"`
	Weather     ProviderConfig `yaml:"weather,omitempty"`
	Tariff      ProviderConfig `yaml:"tariff,omitempty"`
	Discom      ProviderConfig `yaml:"discom,omitempty"`
	FlatRate    float64        `yaml:"flat_rate,omitempty"` // ₹/kWh used when no TOU history is available
}

// CacheConfig selects where the last uploaded dataset is kept.
type CacheConfig struct {
	Backend    string `yaml:"backend,omitempty"` // "sqlite" (default) or "file"
	Dir        string `yaml:"dir,omitempty"`     // file backend directory
	Key        string `yaml:"key,omitempty"`
	MaxRecords int    `yaml:"max_records,omitempty"`
}

// LocationConfig stands in for browser geolocation.
type LocationConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ProviderConfig holds an external HTTP API endpoint.
type ProviderConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token,omitempty"` // bearer token, or API key for weather
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Enabled reports whether the provider has an endpoint configured.
func (p ProviderConfig) Enabled() bool {
	return p.URL != ""
}

// GetTimeout returns the request timeout with a default of 10s.
func (p ProviderConfig) GetTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return p.Timeout
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// may hold API tokens
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

func (c *Config) GetAddr() string {
	if c.Addr == "" {
		return ":8080"
	}
	return c.Addr
}

func (c *Config) GetFrontendDir() string {
	if c.FrontendDir == "" {
		return "frontend/build"
	}
	return c.FrontendDir
}

func (c *Config) GetDBPath() string {
	if c.DBPath == "" {
		return "data.db"
	}
	return c.DBPath
}

// GetCacheBackend returns "sqlite" unless "file" is configured.
func (c *Config) GetCacheBackend() string {
	if c.Cache.Backend == "file" {
		return "file"
	}
	return "sqlite"
}

func (c *Config) GetCacheDir() string {
	if c.Cache.Dir == "" {
		return "cache"
	}
	return c.Cache.Dir
}
