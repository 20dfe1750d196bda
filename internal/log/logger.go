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

// Package log configures the structured loggers the service clients report
// failures through. slog is the default backend; zap is available for
// deployments that already standardise on it.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the encoding of log records.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Backend selects the logging library.
type Backend string

const (
	BackendSlog Backend = "slog"
	BackendZap  Backend = "zap"
)

// Field keys shared by every failure record.
const (
	NameKey          = "name"
	RetryCountKey    = "retry_count"
	CorrelationIDKey = "correlation_id"
	ComponentKey     = "component"
)

// Config holds the logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer

	AddSource bool
	Backend   Backend
}

// DefaultConfig returns info level JSON on stderr through slog.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  FormatJSON,
		Output:  os.Stderr,
		Backend: BackendSlog,
	}
}

// FromEnv returns DefaultConfig with the process environment applied.
func FromEnv() *Config {
	cfg := DefaultConfig()
	ApplyEnv(cfg, os.Getenv)
	return cfg
}

// ApplyEnv overrides cfg from the variables below, read through getenv:
//
//	LOG_LEVEL               debug|info|warn|error
//	FORMCLIENT_LOG_LEVEL    same, wins over LOG_LEVEL
//	LOG_FORMAT              json|text
//	LOG_SOURCE              1|true adds file:line
//	FORMCLIENT_LOG_BACKEND  slog|zap
//	FORMCLIENT_DEBUG        1|true forces debug level with source
func ApplyEnv(cfg *Config, getenv func(string) string) {
	for _, key := range []string{"LOG_LEVEL", "FORMCLIENT_LOG_LEVEL"} {
		if v := getenv(key); v != "" {
			cfg.Level = strings.ToLower(v)
		}
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Format = Format(strings.ToLower(v))
	}
	if v := getenv("LOG_SOURCE"); v != "" {
		cfg.AddSource = truthy(v)
	}
	if v := getenv("FORMCLIENT_LOG_BACKEND"); v != "" {
		cfg.Backend = Backend(strings.ToLower(v))
	}
	if truthy(getenv("FORMCLIENT_DEBUG")) {
		cfg.Level = "debug"
		cfg.AddSource = true
	}
}

func truthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// New creates a slog logger from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: cfg.AddSource}
	if cfg.Format == FormatText {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// ErrorLogger is the logging capability the service clients call into.
type ErrorLogger interface {
	Error(msg string, args ...any)
}

// NewErrorLogger builds a logger for the configured backend. The returned
// flush function must be called before exit; it is a no-op for slog.
func NewErrorLogger(cfg *Config) (ErrorLogger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Backend != BackendZap {
		return New(cfg), func() error { return nil }, nil
	}
	z, err := NewZap(cfg)
	if err != nil {
		return nil, nil, err
	}
	zl := NewZapLogger(z)
	return zl, zl.Sync, nil
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "warning":
		return slog.LevelWarn
	default:
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return slog.LevelInfo
		}
		return l
	}
}

// WithCorrelationID tags every record of logger with id.
func WithCorrelationID(logger *slog.Logger, id string) *slog.Logger {
	return logger.With(CorrelationIDKey, id)
}

// WithComponent tags every record of logger with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(ComponentKey, component)
}

// SanitizeSecret hides a configured secret. An empty value stays empty so
// that "not configured" remains visible.
func SanitizeSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "[REDACTED]"
}
