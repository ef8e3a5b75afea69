// Package config loads the service configuration.
//
// Sources, lowest precedence first:
//  1. built-in defaults
//  2. a YAML file named by CONFIG_FILE (optional), with ${VAR} expansion
//  3. environment variables, after loading a .env file if one exists
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Application environments.
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// Config holds all runtime configuration values.
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects the driver and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	URL    string `yaml:"url"`    // file path for sqlite, DSN for mysql

	// urlSet records whether URL came from the file or the environment
	// rather than the default. Production refuses the default.
	urlSet bool
}

// CORSConfig is the browser-origin allow-list for /api/*.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Env:    EnvDevelopment,
		Server: ServerConfig{Port: 5001},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "data/todos.db",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"https://ice-ittikorn.github.io"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or "" if unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	before := c.Database.URL
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if c.Database.URL != before {
		c.Database.urlSet = true
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q", v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
		c.Database.urlSet = true
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	// The testing profile always uses a throwaway database.
	if c.Env == EnvTesting && !c.Database.urlSet {
		c.Database.Driver = "sqlite"
		c.Database.URL = ":memory:"
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("env must be one of development, testing, production (got %q)", c.Env)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("database.driver must be sqlite or mysql (got %q)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Env == EnvProduction && !c.Database.urlSet {
		return fmt.Errorf("DATABASE_URL must be set in production")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	return nil
}
