// Copyright 2025 Tom Barlow
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

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-glide/internal/credential"
	"github.com/tombee/conductor-glide/internal/log"
	"github.com/tombee/conductor-glide/internal/secrets"
	"github.com/tombee/conductor-glide/internal/tracing"
)

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// CurrentVersion is the settings file schema version.
const CurrentVersion = 1

// Config is the complete glidectl configuration.
type Config struct {
	Version int            `yaml:"version"`
	Log     LogConfig      `yaml:"log"`
	Glide   GlideConfig    `yaml:"glide"`
	Shippo  ShippoConfig   `yaml:"shippo"`
	Tracing tracing.Config `yaml:"tracing"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	// Environment: GLIDECTL_LOG_LEVEL, LOG_LEVEL
	// Default: info
	Level string `yaml:"level"`

	// Format is json or text.
	// Environment: LOG_FORMAT
	// Default: text
	Format string `yaml:"format"`

	// AddSource adds file and line to each record.
	AddSource bool `yaml:"add_source,omitempty"`
}

// GlideConfig configures the Glide tables client.
type GlideConfig struct {
	// BaseURL overrides the API host.
	// Environment: GLIDE_BASE_URL
	BaseURL string `yaml:"base_url,omitempty"`

	// AppID is used when a command or item does not name an app.
	// Environment: GLIDE_APP_ID
	AppID string `yaml:"app_id,omitempty"`

	// Environment is test or live.
	// Environment: GLIDE_ENVIRONMENT
	Environment string `yaml:"environment,omitempty"`

	// TokenRef locates the API token: env:NAME, ${NAME}, keychain:KEY or
	// a bare secret key.
	// Default: glide/api_token
	TokenRef string `yaml:"token_ref,omitempty"`

	// Timeout bounds each HTTP request. Zero (the default) sets no
	// client-side timeout; cancellation comes from the caller's context.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit,omitempty"`
}

// ShippoConfig configures the Shippo credential.
type ShippoConfig struct {
	// Environment is test or live.
	// Environment: SHIPPO_ENVIRONMENT
	Environment string `yaml:"environment,omitempty"`

	// TokenRef locates the API token.
	// Default: shippo/api_token
	TokenRef string `yaml:"token_ref,omitempty"`

	// BaseURLs overrides the host per environment (keys: test, live).
	BaseURLs map[string]string `yaml:"base_urls,omitempty"`

	// Timeout bounds each HTTP request. Zero (the default) sets no
	// client-side timeout; cancellation comes from the caller's context.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Log: LogConfig{
			Level:  "info",
			Format: string(log.FormatText),
		},
		Glide: GlideConfig{
			BaseURL:     credential.GlideBaseURL,
			Environment: string(credential.EnvironmentTest),
			TokenRef:    secrets.GlideTokenKey,
		},
		Shippo: ShippoConfig{
			Environment: string(credential.EnvironmentTest),
			TokenRef:    secrets.ShippoTokenKey,
		},
		Tracing: tracing.Config{
			Exporter: tracing.ExporterNone,
		},
	}
}

// Load reads configuration from a YAML file, then applies defaults and
// environment overrides, then validates. An empty path means the default
// settings file, which may be absent; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		p, err := SettingsPath()
		if err != nil {
			return nil, &ConfigError{Key: "config_file", Reason: "cannot determine settings path", Cause: err}
		}
		configPath = p
	}

	if err := cfg.loadFromFile(configPath); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills zero values so minimal files work.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	if c.Glide.BaseURL == "" {
		c.Glide.BaseURL = defaults.Glide.BaseURL
	}
	if c.Glide.Environment == "" {
		c.Glide.Environment = defaults.Glide.Environment
	}
	if c.Glide.TokenRef == "" {
		c.Glide.TokenRef = defaults.Glide.TokenRef
	}

	if c.Shippo.Environment == "" {
		c.Shippo.Environment = defaults.Shippo.Environment
	}
	if c.Shippo.TokenRef == "" {
		c.Shippo.TokenRef = defaults.Shippo.TokenRef
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("GLIDECTL_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	} else if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}

	if val := os.Getenv("GLIDE_BASE_URL"); val != "" {
		c.Glide.BaseURL = val
	}
	if val := os.Getenv("GLIDE_APP_ID"); val != "" {
		c.Glide.AppID = val
	}
	if val := os.Getenv("GLIDE_ENVIRONMENT"); val != "" {
		c.Glide.Environment = strings.ToLower(val)
	}
	if val := os.Getenv("GLIDECTL_RATE_LIMIT"); val != "" {
		if rps, err := strconv.ParseFloat(val, 64); err == nil {
			c.Glide.RateLimit = rps
		}
	}
	if val := os.Getenv("GLIDECTL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Glide.Timeout = d
			c.Shippo.Timeout = d
		}
	}

	if val := os.Getenv("SHIPPO_ENVIRONMENT"); val != "" {
		c.Shippo.Environment = strings.ToLower(val)
	}

	if val := os.Getenv("GLIDECTL_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{string(log.FormatJSON): true, string(log.FormatText): true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if err := validateBaseURL(c.Glide.BaseURL); err != nil {
		errs = append(errs, "glide.base_url "+err.Error())
	}
	if _, err := credential.ParseEnvironment(c.Glide.Environment); err != nil {
		errs = append(errs, "glide."+err.Error())
	}
	if c.Glide.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("glide.timeout must not be negative, got %v", c.Glide.Timeout))
	}
	if c.Glide.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("glide.rate_limit must not be negative, got %v", c.Glide.RateLimit))
	}

	if _, err := credential.ParseEnvironment(c.Shippo.Environment); err != nil {
		errs = append(errs, "shippo."+err.Error())
	}
	if c.Shippo.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("shippo.timeout must not be negative, got %v", c.Shippo.Timeout))
	}
	for env, u := range c.Shippo.BaseURLs {
		if _, err := credential.ParseEnvironment(env); err != nil || env == "" {
			errs = append(errs, fmt.Sprintf("shippo.base_urls key %q must be test or live", env))
			continue
		}
		if err := validateBaseURL(u); err != nil {
			errs = append(errs, fmt.Sprintf("shippo.base_urls.%s %s", env, err.Error()))
		}
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}

// LoggerConfig converts the log section into a logger configuration.
func (c *Config) LoggerConfig() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = log.Format(c.Log.Format)
	cfg.AddSource = c.Log.AddSource
	return cfg
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host, got %q", raw)
	}
	return nil
}
