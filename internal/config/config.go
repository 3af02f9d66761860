package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Resolver ResolverConfig `yaml:"resolver"`
	Journal  JournalConfig  `yaml:"journal"`
	Download DownloadConfig `yaml:"download"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9848"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
}

// ResolverConfig holds the provider contract the resolver client depends on.
// These values are versioned together with the pinned web client bundle and
// go stale together with it; contract drift should only ever require touching
// this block and the flag tables next to the request builder.
type ResolverConfig struct {
	BundleURL      string        `yaml:"bundle_url" envconfig:"RESOLVER_BUNDLE_URL" default:"https://abs.twimg.com/responsive-web/client-web/main.165ee22a.js"`
	ActivateURL    string        `yaml:"activate_url" envconfig:"RESOLVER_ACTIVATE_URL" default:"https://api.twitter.com/1.1/guest/activate.json"`
	GraphQLURL     string        `yaml:"graphql_url" envconfig:"RESOLVER_GRAPHQL_URL" default:"https://api.x.com/graphql/OoJd6A50cv8GsifjoOHGfg"`
	UserAgent      string        `yaml:"user_agent" envconfig:"RESOLVER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:84.0) Gecko/20100101 Firefox/84.0"`
	AcceptLanguage string        `yaml:"accept_language" envconfig:"RESOLVER_ACCEPT_LANGUAGE" default:"de,en-US;q=0.7,en;q=0.3"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"RESOLVER_TIMEOUT" default:"30s"`
}

// JournalConfig holds resolution journal configuration.
type JournalConfig struct {
	RingSize      int    `yaml:"ring_size" envconfig:"JOURNAL_RING_SIZE" default:"500"`
	Persist       bool   `yaml:"persist" envconfig:"JOURNAL_PERSIST"`
	Path          string `yaml:"path" envconfig:"JOURNAL_PATH" default:"xresolve.db"`
	RetentionDays int    `yaml:"retention_days" envconfig:"JOURNAL_RETENTION_DAYS" default:"30"`
}

// DownloadConfig holds file download configuration used by the CLI.
type DownloadConfig struct {
	Dir       string        `yaml:"dir" envconfig:"DOWNLOAD_DIR" default:"."`
	Timeout   time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"10m"`
	UserAgent string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:84.0) Gecko/20100101 Firefox/84.0"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Resolver.BundleURL == "" {
		return fmt.Errorf("RESOLVER_BUNDLE_URL is required")
	}
	if c.Resolver.ActivateURL == "" {
		return fmt.Errorf("RESOLVER_ACTIVATE_URL is required")
	}
	if c.Resolver.GraphQLURL == "" {
		return fmt.Errorf("RESOLVER_GRAPHQL_URL is required")
	}
	if c.Resolver.Timeout <= 0 {
		return fmt.Errorf("RESOLVER_TIMEOUT must be positive")
	}
	if c.Journal.RingSize < 1 {
		return fmt.Errorf("JOURNAL_RING_SIZE must be positive")
	}
	if c.Journal.Persist && c.Journal.Path == "" {
		return fmt.Errorf("JOURNAL_PATH is required when journal persistence is enabled")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
