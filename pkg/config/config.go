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

// Package config loads the settings shared by the service clients.
//
// Values are layered in increasing precedence: Default, an optional YAML
// file, an optional .env file and finally the process environment. The
// result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tombee/formclient/internal/log"
	clienterrors "github.com/tombee/formclient/pkg/errors"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Service names used as keys in Services and in FORMCLIENT_<SERVICE>_URL.
const (
	ServiceEmail         = "email"
	ServiceSMS           = "sms"
	ServiceSubmitter     = "submitter"
	ServiceUserDataStore = "user_datastore"
	ServiceUserFileStore = "user_filestore"
)

var serviceNames = []string{ServiceEmail, ServiceSMS, ServiceSubmitter, ServiceUserDataStore, ServiceUserFileStore}

// Transport and metrics backends.
const (
	TransportHTTP    = "http"
	TransportResty   = "resty"
	TransportOffline = "offline"

	MetricsNone       = "none"
	MetricsPrometheus = "prometheus"
	MetricsOTel       = "otel"
)

// Config is the complete client configuration.
type Config struct {
	Identity  IdentityConfig  `yaml:"identity"`
	Services  ServicesConfig  `yaml:"services"`
	Transport TransportConfig `yaml:"transport"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Log       LogConfig       `yaml:"log"`
	Token     TokenConfig     `yaml:"token"`
}

// IdentityConfig holds the calling service's credentials.
type IdentityConfig struct {
	// ServiceSecret is the 32-byte key used for user identity encryption
	ServiceSecret string `yaml:"service_secret"`

	// ServiceSlug is the issuer of every access token
	ServiceSlug string `yaml:"service_slug"`

	// PrivateKey is the base64-encoded PEM RSA key. Empty disables signing.
	PrivateKey string `yaml:"private_key"`
}

// LogValue keeps the secret and key out of log records.
func (i IdentityConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("service_secret", log.SanitizeSecret(i.ServiceSecret)),
		slog.String("service_slug", i.ServiceSlug),
		slog.String("private_key", log.SanitizeSecret(i.PrivateKey)),
	)
}

// ServicesConfig holds the base URL of each remote service.
type ServicesConfig struct {
	Email         string `yaml:"email"`
	SMS           string `yaml:"sms"`
	Submitter     string `yaml:"submitter"`
	UserDataStore string `yaml:"user_datastore"`
	UserFileStore string `yaml:"user_filestore"`
}

// URLs returns the configured URLs keyed by service name.
func (s ServicesConfig) URLs() map[string]string {
	return map[string]string{
		ServiceEmail:         s.Email,
		ServiceSMS:           s.SMS,
		ServiceSubmitter:     s.Submitter,
		ServiceUserDataStore: s.UserDataStore,
		ServiceUserFileStore: s.UserFileStore,
	}
}

func (s *ServicesConfig) set(name, value string) {
	switch name {
	case ServiceEmail:
		s.Email = value
	case ServiceSMS:
		s.SMS = value
	case ServiceSubmitter:
		s.Submitter = value
	case ServiceUserDataStore:
		s.UserDataStore = value
	case ServiceUserFileStore:
		s.UserFileStore = value
	}
}

// TransportConfig selects and tunes the request executor.
type TransportConfig struct {
	// Type is http, resty or offline
	Type string `yaml:"type"`

	// Timeout bounds a single attempt
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with every request when set
	UserAgent string `yaml:"user_agent,omitempty"`

	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Offline   OfflineConfig   `yaml:"offline"`
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
}

// RateLimitConfig configures the shared token bucket. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// OfflineConfig configures the store behind the offline transport.
type OfflineConfig struct {
	// Store is memory or bbolt
	Store string        `yaml:"store"`
	Path  string        `yaml:"path,omitempty"`
	TTL   time.Duration `yaml:"ttl"`
}

// MetricsConfig selects the timer backend.
type MetricsConfig struct {
	// Backend is none, prometheus or otel
	Backend   string `yaml:"backend"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Exporter is none, console, otlp or otlp-http
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector address
	Endpoint string `yaml:"endpoint,omitempty"`

	Insecure   bool              `yaml:"insecure"`
	CACertPath string            `yaml:"ca_cert_path,omitempty"`
	Headers    map[string]string `yaml:"headers,omitempty"`

	// SampleRate is the fraction of calls traced (0.0 - 1.0)
	SampleRate  float64 `yaml:"sample_rate"`
	ServiceName string  `yaml:"service_name"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Format sets the output format (json, text)
	Format string `yaml:"format"`

	// AddSource adds source file and line information to logs
	AddSource bool `yaml:"add_source"`

	// Backend is slog or zap
	Backend string `yaml:"backend"`
}

// TokenConfig configures access token issue.
type TokenConfig struct {
	// TTL adds an exp claim when positive
	TTL time.Duration `yaml:"ttl"`
}

// Default returns a configuration with sensible defaults. Identity and
// service URLs have no defaults.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Type:    TransportHTTP,
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxRetries:     3,
				InitialBackoff: time.Second,
				MaxBackoff:     30 * time.Second,
				BackoffFactor:  2.0,
			},
			Offline: OfflineConfig{
				Store: "memory",
				TTL:   28 * 24 * time.Hour,
			},
		},
		Metrics: MetricsConfig{
			Backend:   MetricsNone,
			Namespace: "formclient",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			SampleRate:  1.0,
			ServiceName: "formclient",
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "json",
			Backend: "slog",
		},
	}
}

// Load reads configPath (optional), then .env in the working directory
// (optional), then the environment, and validates the result.
func Load(configPath string) (*Config, error) {
	return LoadWithEnvFile(configPath, ".env")
}

// LoadWithEnvFile is Load with an explicit dotenv file. An empty envFile
// skips the dotenv layer; a missing one is ignored.
func LoadWithEnvFile(configPath, envFile string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &clienterrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, &clienterrors.ConfigError{
			Key:    "env_file",
			Reason: fmt.Sprintf("failed to load from %s", envFile),
			Cause:  err,
		}
	}

	if err := cfg.loadFromEnv(lookupWith(dotenv)); err != nil {
		return nil, &clienterrors.ConfigError{
			Key:    "environment",
			Reason: "invalid environment value",
			Cause:  err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &clienterrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
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

// readEnvFile parses a dotenv file without exporting it into the process
// environment.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

type lookupFunc func(key string) string

// lookupWith prefers non-empty process variables over dotenv values.
func lookupWith(dotenv map[string]string) lookupFunc {
	return func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return dotenv[key]
	}
}

// loadFromEnv applies environment overrides.
func (c *Config) loadFromEnv(env lookupFunc) error {
	// Identity
	if val := env("FORMCLIENT_SERVICE_SECRET"); val != "" {
		c.Identity.ServiceSecret = val
	}
	if val := env("FORMCLIENT_SERVICE_SLUG"); val != "" {
		c.Identity.ServiceSlug = val
	}
	if val := env("FORMCLIENT_PRIVATE_KEY"); val != "" {
		c.Identity.PrivateKey = val
	}

	// Services
	for _, name := range serviceNames {
		if val := env("FORMCLIENT_" + strings.ToUpper(name) + "_URL"); val != "" {
			c.Services.set(name, val)
		}
	}

	// Transport
	if val := env("FORMCLIENT_TRANSPORT"); val != "" {
		c.Transport.Type = strings.ToLower(val)
	}
	if val := env("FORMCLIENT_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("FORMCLIENT_TIMEOUT: %w", err)
		}
		c.Transport.Timeout = d
	}
	if val := env("FORMCLIENT_MAX_RETRIES"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("FORMCLIENT_MAX_RETRIES: %w", err)
		}
		c.Transport.Retry.MaxRetries = n
	}
	if val := env("FORMCLIENT_RATE_LIMIT"); val != "" {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("FORMCLIENT_RATE_LIMIT: %w", err)
		}
		c.Transport.RateLimit.RPS = rps
	}
	if val := env("FORMCLIENT_OFFLINE_STORE"); val != "" {
		c.Transport.Offline.Store = strings.ToLower(val)
	}
	if val := env("FORMCLIENT_OFFLINE_PATH"); val != "" {
		c.Transport.Offline.Path = val
	}

	// Metrics
	if val := env("FORMCLIENT_METRICS"); val != "" {
		c.Metrics.Backend = strings.ToLower(val)
	}

	// Tracing
	if val := env("FORMCLIENT_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := env("FORMCLIENT_TRACING_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
	if val := env("FORMCLIENT_TRACING_SAMPLE_RATE"); val != "" {
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("FORMCLIENT_TRACING_SAMPLE_RATE: %w", err)
		}
		c.Tracing.SampleRate = rate
	}

	// Token
	if val := env("FORMCLIENT_TOKEN_TTL"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("FORMCLIENT_TOKEN_TTL: %w", err)
		}
		c.Token.TTL = d
	}

	// Log
	lc := &log.Config{
		Level:     c.Log.Level,
		Format:    log.Format(c.Log.Format),
		AddSource: c.Log.AddSource,
		Backend:   log.Backend(c.Log.Backend),
	}
	log.ApplyEnv(lc, env)
	c.Log.Level = lc.Level
	c.Log.Format = string(lc.Format)
	c.Log.AddSource = lc.AddSource
	c.Log.Backend = string(lc.Backend)

	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	// Identity
	if c.Identity.ServiceSecret == "" {
		errs = append(errs, "identity.service_secret is required")
	} else if len(c.Identity.ServiceSecret) != 32 {
		errs = append(errs, fmt.Sprintf("identity.service_secret must be 32 bytes, got %d", len(c.Identity.ServiceSecret)))
	}
	if c.Identity.ServiceSlug == "" {
		errs = append(errs, "identity.service_slug is required")
	}

	// Services. Offline clients never dial, so their URLs are optional.
	urls := c.Services.URLs()
	for _, name := range serviceNames {
		raw := urls[name]
		if raw == "" {
			if c.Transport.Type != TransportOffline {
				errs = append(errs, fmt.Sprintf("services.%s is required", name))
			}
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("services.%s must be an absolute http(s) URL, got %q", name, raw))
		}
	}

	// Transport
	validTransports := map[string]bool{TransportHTTP: true, TransportResty: true, TransportOffline: true}
	if !validTransports[c.Transport.Type] {
		errs = append(errs, fmt.Sprintf("transport.type must be one of [http, resty, offline], got %q", c.Transport.Type))
	}
	if c.Transport.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("transport.timeout must be positive, got %v", c.Transport.Timeout))
	}
	r := c.Transport.Retry
	if r.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("transport.retry.max_retries must be non-negative, got %d", r.MaxRetries))
	}
	if r.InitialBackoff <= 0 {
		errs = append(errs, fmt.Sprintf("transport.retry.initial_backoff must be positive, got %v", r.InitialBackoff))
	}
	if r.MaxBackoff < r.InitialBackoff {
		errs = append(errs, fmt.Sprintf("transport.retry.max_backoff must be at least initial_backoff, got %v", r.MaxBackoff))
	}
	if r.BackoffFactor < 1.0 {
		errs = append(errs, fmt.Sprintf("transport.retry.backoff_factor must be at least 1.0, got %v", r.BackoffFactor))
	}
	if c.Transport.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Sprintf("transport.rate_limit.rps must be non-negative, got %v", c.Transport.RateLimit.RPS))
	}
	if c.Transport.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Sprintf("transport.rate_limit.burst must be non-negative, got %d", c.Transport.RateLimit.Burst))
	}
	switch c.Transport.Offline.Store {
	case "", "memory":
	case "bbolt":
		if c.Transport.Type == TransportOffline && c.Transport.Offline.Path == "" {
			errs = append(errs, "transport.offline.path is required for the bbolt store")
		}
	default:
		errs = append(errs, fmt.Sprintf("transport.offline.store must be one of [memory, bbolt], got %q", c.Transport.Offline.Store))
	}
	if c.Transport.Offline.TTL < 0 {
		errs = append(errs, fmt.Sprintf("transport.offline.ttl must be non-negative, got %v", c.Transport.Offline.TTL))
	}

	// Metrics
	validBackends := map[string]bool{MetricsNone: true, "": true, MetricsPrometheus: true, MetricsOTel: true}
	if !validBackends[c.Metrics.Backend] {
		errs = append(errs, fmt.Sprintf("metrics.backend must be one of [none, prometheus, otel], got %q", c.Metrics.Backend))
	}

	// Tracing
	validExporters := map[string]bool{"": true, "none": true, "console": true, "otlp": true, "otlp-http": true}
	if !validExporters[c.Tracing.Exporter] {
		errs = append(errs, fmt.Sprintf("tracing.exporter must be one of [none, console, otlp, otlp-http], got %q", c.Tracing.Exporter))
	} else if strings.HasPrefix(c.Tracing.Exporter, "otlp") && c.Tracing.Endpoint == "" {
		errs = append(errs, fmt.Sprintf("tracing.endpoint is required for the %s exporter", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be between 0 and 1, got %v", c.Tracing.SampleRate))
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}
	validLogBackends := map[string]bool{"slog": true, "zap": true}
	if !validLogBackends[c.Log.Backend] {
		errs = append(errs, fmt.Sprintf("log.backend must be one of [slog, zap], got %q", c.Log.Backend))
	}

	if c.Token.TTL < 0 {
		errs = append(errs, fmt.Sprintf("token.ttl must be non-negative, got %v", c.Token.TTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}
