package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/benvon/flow/internal/validation"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the GraphQL endpoint of a locally running backend
	DefaultAPIURL = "http://localhost:3000/query"
	// DefaultListenAddr is where the status server listens
	DefaultListenAddr = "127.0.0.1:7420"
)

// Config holds application configuration
type Config struct {
	APIURL         string        `yaml:"api_url" env:"FLOW_API_URL" validate:"required,url"`
	Token          string        `yaml:"token,omitempty" env:"FLOW_TOKEN"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"FLOW_HTTP_TIMEOUT" validate:"gt=0"`
	FetchPolicy    string        `yaml:"fetch_policy" env:"FLOW_FETCH_POLICY" validate:"oneof=network-only network-first cache-first"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"FLOW_CACHE_TTL" validate:"gte=0"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	RabbitMQURL    string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	EventsExchange string        `yaml:"events_exchange" env:"FLOW_EVENTS_EXCHANGE" validate:"required"`
	ListenAddr     string        `yaml:"listen_addr" env:"FLOW_LISTEN_ADDR" validate:"required,hostname_port"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"FLOW_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      string        `yaml:"rate_limit" env:"FLOW_RATE_LIMIT" validate:"required"`
	EnableHSTS     bool          `yaml:"enable_hsts" env:"ENABLE_HSTS"`
	Debug          bool          `yaml:"debug" env:"FLOW_DEBUG"`
	OTELEnabled    bool          `yaml:"otel_enabled" env:"OTEL_ENABLED"`
	OTELEndpoint   string        `yaml:"otel_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TickInterval   time.Duration `yaml:"tick_interval" env:"FLOW_TICK_INTERVAL" validate:"gt=0"`
	ResyncInterval time.Duration `yaml:"resync_interval" env:"FLOW_RESYNC_INTERVAL" validate:"gte=0"`
}

// Default returns the configuration used when neither file nor environment set a value
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		HTTPTimeout:    15 * time.Second,
		FetchPolicy:    "network-only",
		CacheTTL:       10 * time.Minute,
		EventsExchange: "flow_events",
		ListenAddr:     DefaultListenAddr,
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      "10-S",
		TickInterval:   time.Second,
		ResyncInterval: time.Minute,
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting user home directory: %w", err)
		}
		if runtime.GOOS == "windows" {
			configHome = filepath.Join(homeDir, "AppData", "Roaming")
		} else {
			configHome = filepath.Join(homeDir, ".config")
		}
	}
	return filepath.Join(configHome, "flow", "flow.yaml"), nil
}

// Load loads configuration from the YAML file at path and the process environment.
// An empty path means DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validation.Validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %s", validation.FirstError(err))
	}

	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to path, creating parent directories
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

