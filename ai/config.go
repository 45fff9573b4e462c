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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the enrichment service client.
type Config struct {
	// APIKey authenticates requests to the enrichment service.
	// Required; typically supplied via the ANTHROPIC_API_KEY environment variable.
	APIKey string

	// BaseURL is the service endpoint base, without the /v1/messages path.
	// Default: "https://api.anthropic.com"
	BaseURL string

	// Model is the model identifier sent with each request.
	// Default: "claude-3-sonnet-20240229"
	Model string

	// MaxTokens caps the response length requested from the service.
	// Default: 1024
	MaxTokens int

	// MaxAttempts bounds how many times a single request is issued when the
	// service keeps responding with a rate-limit status. Below this cap a
	// throttle is never surfaced as a failure.
	// Default: 10
	MaxAttempts int

	// ThrottleDelay is how long to wait after a rate-limit response before
	// reissuing the request.
	// Default: 20s
	ThrottleDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets the service endpoint base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the response token cap.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithMaxAttempts sets the throttle retry cap.
func WithMaxAttempts(n int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithThrottleDelay sets the cool-down applied after a rate-limit response.
func WithThrottleDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ThrottleDelay = d
	}
}

// DefaultConfig returns a Config with defaults matching the public Anthropic
// messages endpoint. The API key has no default and must be provided.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://api.anthropic.com",
		Model:         "claude-3-sonnet-20240229",
		MaxTokens:     1024,
		MaxAttempts:   10,
		ThrottleDelay: 20 * time.Second,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("ai config: APIKey is required")
	}
	if c.BaseURL == "" {
		return errors.New("ai config: BaseURL is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be greater than 0")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("ai config: MaxAttempts must be greater than 0")
	}
	if c.ThrottleDelay < 0 {
		return errors.New("ai config: ThrottleDelay cannot be negative")
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	return nil
}
