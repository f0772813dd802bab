// Package config loads the settings of the grakawa command line tool.
//
// Values are layered, later layers overriding earlier ones:
//
//  1. built-in defaults
//  2. an optional YAML file
//  3. a .env file in the working directory
//  4. GRAKAWA_* environment variables
//
// Environment keys map onto the YAML structure by lower-casing and turning
// underscores into dots: GRAKAWA_SOURCE_BASEURL sets source.baseurl.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/LukasKalbertodt/grakawa/acquire"
	"github.com/LukasKalbertodt/grakawa/tracking"
)

const (
	envPrefix      = "GRAKAWA_"
	defaultEnvFile = ".env"

	// DefaultStore is the store directory used when none is configured.
	DefaultStore = "prices"
)

// Config is the complete tool configuration.
type Config struct {
	Store       string       `koanf:"store" validate:"required"`
	LogLevel    string       `koanf:"loglevel" validate:"oneof=debug info warn warning error"`
	Source      SourceConfig `koanf:"source"`
	Workers     int          `koanf:"workers" validate:"gte=1,lte=256"`
	MetricsFile string       `koanf:"metricsfile"`
}

// SourceConfig configures the remote price service.
type SourceConfig struct {
	BaseURL    string        `koanf:"baseurl" validate:"required,http_url"`
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries int           `koanf:"maxretries" validate:"gte=1,lte=20"`
	RetryDelay time.Duration `koanf:"retrydelay" validate:"gte=0"`
}

// String returns a readable dump of the configuration.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	fmt.Fprintf(&b, "  store: %s\n", c.Store)
	fmt.Fprintf(&b, "  workers: %d\n", c.Workers)
	fmt.Fprintf(&b, "  metricsfile: %s\n", orUnset(c.MetricsFile))
	b.WriteString("\n--- Source ---\n")
	fmt.Fprintf(&b, "  source.baseurl: %s\n", c.Source.BaseURL)
	fmt.Fprintf(&b, "  source.timeout: %v\n", c.Source.Timeout)
	fmt.Fprintf(&b, "  source.maxretries: %d\n", c.Source.MaxRetries)
	fmt.Fprintf(&b, "  source.retrydelay: %v\n", c.Source.RetryDelay)
	b.WriteString("\n--- Logging ---\n")
	fmt.Fprintf(&b, "  loglevel: %s\n", c.LogLevel)
	return b.String()
}

func orUnset(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return s
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AcquireConfig converts the source settings for acquire sources.
func (c *Config) AcquireConfig() *acquire.Config {
	return acquire.NewConfig(
		acquire.WithBaseURL(c.Source.BaseURL),
		acquire.WithTimeout(c.Source.Timeout),
		acquire.WithMaxRetries(c.Source.MaxRetries),
		acquire.WithRetryDelay(c.Source.RetryDelay),
	)
}

// TrackingConfig returns the bulk operation settings.
func (c *Config) TrackingConfig() *tracking.Config {
	cfg := tracking.DefaultConfig()
	cfg.Workers = c.Workers
	return cfg
}

func defaults() map[string]any {
	src := acquire.DefaultConfig()
	return map[string]any{
		"store":             DefaultStore,
		"loglevel":          "info",
		"workers":           tracking.DefaultConfig().Workers,
		"metricsfile":       "",
		"source.baseurl":    src.BaseURL,
		"source.timeout":    src.Timeout,
		"source.maxretries": src.MaxRetries,
		"source.retrydelay": src.RetryDelay,
	}
}

func envKey(key string) string {
	key = strings.TrimPrefix(strings.ToUpper(key), envPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it, but a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. YAML file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	// 3. .env file, only GRAKAWA_ keys
	if envFileMap, err := godotenv.Read(defaultEnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				envMap[envKey(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", defaultEnvFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading env file", "file", defaultEnvFile, "error", err)
	}

	// 4. Process environment, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
