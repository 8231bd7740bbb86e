// Package config loads laborder settings from defaults, an optional YAML
// file, an optional .env file and LAB_ORDER_* environment variables, in that
// order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cart storage backends.
const (
	BackendBolt   = "bolt"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config is the complete laborder configuration.
type Config struct {
	API  APIConfig  `yaml:"api"`
	Cart CartConfig `yaml:"cart"`
	Log  LogConfig  `yaml:"log"`
	// MetricsFile, when set, receives the Prometheus text exposition at exit.
	MetricsFile string `yaml:"metrics_file" env:"LAB_ORDER_METRICS_FILE"`
}

// APIConfig configures the remote store client.
type APIConfig struct {
	URL         string        `yaml:"url" env:"LAB_ORDER_API_URL"`
	Timeout     time.Duration `yaml:"timeout" env:"LAB_ORDER_TIMEOUT"`
	RateLimit   float64       `yaml:"rate_limit" env:"LAB_ORDER_RATE_LIMIT"`
	Burst       int           `yaml:"burst" env:"LAB_ORDER_RATE_BURST"`
	ReadRetries int           `yaml:"read_retries" env:"LAB_ORDER_READ_RETRIES"`
}

// CartConfig configures local cart persistence.
type CartConfig struct {
	// Backend is one of bolt, file, memory.
	Backend string `yaml:"backend" env:"LAB_ORDER_CART_BACKEND"`
	// Path is the bolt database file, or the directory for the file backend.
	Path string `yaml:"path" env:"LAB_ORDER_CART_PATH"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LAB_ORDER_LOG_LEVEL"`
	Format string `yaml:"format" env:"LAB_ORDER_LOG_FORMAT"`
	File   string `yaml:"file" env:"LAB_ORDER_LOG_FILE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
			Burst:   1,
		},
		Cart: CartConfig{
			Backend: BackendBolt,
			Path:    defaultCartPath(),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

func defaultCartPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".laborder", "cart.db")
	}
	return filepath.Join(dir, "laborder", "cart.db")
}

// Load builds the configuration. An empty path skips the YAML file; an empty
// envFile loads ./.env when it exists.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate checks required fields and normalizes enumerations.
func (c *Config) Validate() error {
	c.API.URL = strings.TrimSpace(c.API.URL)
	if c.API.URL == "" {
		return fmt.Errorf("api url is required (set LAB_ORDER_API_URL)")
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api rate_limit must not be negative")
	}
	if c.API.ReadRetries < 0 {
		return fmt.Errorf("api read_retries must not be negative")
	}

	c.Cart.Backend = strings.ToLower(strings.TrimSpace(c.Cart.Backend))
	switch c.Cart.Backend {
	case BackendBolt, BackendFile:
		if c.Cart.Path == "" {
			return fmt.Errorf("cart path is required for the %s backend", c.Cart.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("cart backend %q is not one of bolt, file, memory", c.Cart.Backend)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q is not one of text, json", c.Log.Format)
	}
	return nil
}
