// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package acquire

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config holds configuration for a remote price service.
type Config struct {
	// BaseURL is the root of the service API.
	// Example: "http://localhost:8080/api"
	BaseURL string

	// Timeout bounds a single HTTP request.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the maximum number of attempts for a temporary failure.
	// Default: 3
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff between attempts.
	// Default: 1s
	RetryDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// BreakerThreshold is the number of consecutive temporary failures after
	// which requests are refused for BreakerCooldown.
	// Default: 5
	BreakerThreshold int

	// BreakerCooldown is how long an open circuit refuses requests.
	// Default: 30s
	BreakerCooldown time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the service base URL.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of attempts.
func WithMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

// WithRetryDelay sets the base backoff delay.
func WithRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ConfigOption {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithBreaker sets the circuit breaker threshold and cooldown.
func WithBreaker(threshold int, cooldown time.Duration) ConfigOption {
	return func(c *Config) {
		c.BreakerThreshold = threshold
		c.BreakerCooldown = cooldown
	}
}

// DefaultConfig returns a Config with sensible defaults for a local service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "http://localhost:8080/api",
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		RetryDelay:       1 * time.Second,
		UserAgent:        "grakawa/0.1",
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBaseURL("https://prices.example.com/api"),
//	    WithMaxRetries(5),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Trailing slashes are removed from BaseURL so paths can be appended.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("acquire config: BaseURL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("acquire config: BaseURL must be an absolute http(s) URL")
	}
	if c.Timeout <= 0 {
		return errors.New("acquire config: Timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return errors.New("acquire config: MaxRetries must be at least 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("acquire config: RetryDelay must not be negative")
	}
	if c.BreakerThreshold < 1 {
		return errors.New("acquire config: BreakerThreshold must be at least 1")
	}
	if c.BreakerCooldown <= 0 {
		return errors.New("acquire config: BreakerCooldown must be positive")
	}
	return nil
}
