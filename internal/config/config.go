// ABOUTME: Configuration loading and parsing for the warden daemon.
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing.

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete warden daemon configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Fleet    FleetConfig    `yaml:"fleet"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds the event journal database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds API authentication configuration. Leaving JWTSecret empty
// and creating no static tokens serves the API open.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// FleetConfig points at the agent manifest and holds fleet-wide timing knobs.
type FleetConfig struct {
	ManifestPath string `yaml:"manifest"`

	DefaultHealthInterval time.Duration `yaml:"-"`
	DefaultTimeout        time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	DefaultHealthIntervalRaw string `yaml:"default_health_interval"`
	DefaultTimeoutRaw        string `yaml:"default_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// envVarPattern matches ${VAR_NAME} references.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR_NAME} with the environment value.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// parseDurations converts the raw duration strings into time.Duration fields.
func parseDurations(cfg *Config) error {
	parse := func(field, raw string, out *time.Duration) error {
		if raw == "" {
			return nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*out = d
		return nil
	}

	if err := parse("fleet.default_health_interval", cfg.Fleet.DefaultHealthIntervalRaw, &cfg.Fleet.DefaultHealthInterval); err != nil {
		return err
	}
	if err := parse("fleet.default_timeout", cfg.Fleet.DefaultTimeoutRaw, &cfg.Fleet.DefaultTimeout); err != nil {
		return err
	}
	return nil
}

// applyDefaults fills unset fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8420"
	}
	if c.Database.Path == "" {
		c.Database.Path = "warden.db"
	}
	if c.Fleet.ManifestPath == "" {
		c.Fleet.ManifestPath = "fleet.toml"
	}
	if c.Fleet.DefaultHealthInterval == 0 {
		c.Fleet.DefaultHealthInterval = 30 * time.Second
	}
	if c.Fleet.DefaultTimeout == 0 {
		c.Fleet.DefaultTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}

	if c.Fleet.DefaultHealthInterval <= 0 {
		return fmt.Errorf("fleet.default_health_interval must be positive")
	}
	if c.Fleet.DefaultTimeout <= 0 {
		return fmt.Errorf("fleet.default_timeout must be positive")
	}
	return nil
}
