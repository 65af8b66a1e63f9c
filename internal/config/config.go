package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Store    StoreConfig  `yaml:"store"`
	Sync     SyncConfig   `yaml:"sync"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

// StoreConfig represents S3-compatible storage configuration
type StoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// SyncConfig represents sync-specific configuration
type SyncConfig struct {
	Dir           string `yaml:"dir"`
	Prefix        string `yaml:"prefix"`
	Concurrency   int    `yaml:"concurrency"`
	DryRun        bool   `yaml:"dry_run"`
	MetricsListen string `yaml:"metrics_listen"`
}

// ServerConfig represents the façade server configuration
type ServerConfig struct {
	Listen string        `yaml:"listen"`
	URLTTL time.Duration `yaml:"url_ttl"`
}

// Load loads configuration from file and command line flags
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Sync: SyncConfig{
			Concurrency: 5,
		},
		Server: ServerConfig{
			Listen: ":8080",
			URLTTL: 15 * time.Minute,
		},
		Store: StoreConfig{
			Secure: true,
		},
	}

	// Load from YAML file if provided
	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with command line flags
	if err := loadFromFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	if err := cfg.validateStore(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("endpoint") {
		cfg.Store.Endpoint, _ = flags.GetString("endpoint")
	}
	if flags.Changed("access-key") {
		cfg.Store.AccessKey, _ = flags.GetString("access-key")
	}
	if flags.Changed("secret-key") {
		cfg.Store.SecretKey, _ = flags.GetString("secret-key")
	}
	if flags.Changed("bucket") {
		cfg.Store.Bucket, _ = flags.GetString("bucket")
	}
	if flags.Changed("secure") {
		cfg.Store.Secure, _ = flags.GetBool("secure")
	}

	if flags.Changed("dir") {
		cfg.Sync.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("prefix") {
		cfg.Sync.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("concurrency") {
		cfg.Sync.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("dry-run") {
		cfg.Sync.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("metrics-listen") {
		cfg.Sync.MetricsListen, _ = flags.GetString("metrics-listen")
	}

	if flags.Changed("listen") {
		cfg.Server.Listen, _ = flags.GetString("listen")
	}
	if flags.Changed("url-ttl") {
		cfg.Server.URLTTL, _ = flags.GetDuration("url-ttl")
	}

	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Endpoint == "" {
		return fmt.Errorf("store endpoint is required")
	}
	if c.Store.AccessKey == "" {
		return fmt.Errorf("store access key is required")
	}
	if c.Store.SecretKey == "" {
		return fmt.Errorf("store secret key is required")
	}
	if c.Store.Bucket == "" {
		return fmt.Errorf("store bucket is required")
	}

	return nil
}

// ValidateSync checks the configuration required by the sync subcommand.
func (c *Config) ValidateSync() error {
	if c.Sync.Dir == "" {
		return fmt.Errorf("sync dir is required")
	}
	if c.Sync.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	return nil
}

// ValidateServer checks the configuration required by the serve subcommand.
func (c *Config) ValidateServer() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server listen address is required")
	}
	if c.Server.URLTTL <= 0 {
		return fmt.Errorf("url ttl must be positive")
	}

	return nil
}
