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

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}

	if cfg.Format != FormatJSON {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}

	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}

	if cfg.Backend != BackendSlog {
		t.Errorf("expected default backend 'slog', got %q", cfg.Backend)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		wantLevel   string
		wantFormat  Format
		wantSource  bool
		wantBackend Backend
	}{
		{
			name:        "defaults when no env vars",
			envVars:     map[string]string{},
			wantLevel:   "info",
			wantFormat:  FormatJSON,
			wantBackend: BackendSlog,
		},
		{
			name:        "LOG_LEVEL=DEBUG (case insensitive)",
			envVars:     map[string]string{"LOG_LEVEL": "DEBUG"},
			wantLevel:   "debug",
			wantFormat:  FormatJSON,
			wantBackend: BackendSlog,
		},
		{
			name:        "FORMCLIENT_LOG_LEVEL wins over LOG_LEVEL",
			envVars:     map[string]string{"LOG_LEVEL": "debug", "FORMCLIENT_LOG_LEVEL": "error"},
			wantLevel:   "error",
			wantFormat:  FormatJSON,
			wantBackend: BackendSlog,
		},
		{
			name:        "FORMCLIENT_DEBUG wins over levels",
			envVars:     map[string]string{"FORMCLIENT_DEBUG": "1", "FORMCLIENT_LOG_LEVEL": "error"},
			wantLevel:   "debug",
			wantFormat:  FormatJSON,
			wantSource:  true,
			wantBackend: BackendSlog,
		},
		{
			name:        "format source and backend",
			envVars:     map[string]string{"LOG_FORMAT": "TEXT", "LOG_SOURCE": "1", "FORMCLIENT_LOG_BACKEND": "zap"},
			wantLevel:   "info",
			wantFormat:  FormatText,
			wantSource:  true,
			wantBackend: BackendZap,
		},
	}

	keys := []string{"FORMCLIENT_DEBUG", "FORMCLIENT_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE", "FORMCLIENT_LOG_BACKEND"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := FromEnv()
			if cfg.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", cfg.Level, tt.wantLevel)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.wantFormat)
			}
			if cfg.AddSource != tt.wantSource {
				t.Errorf("AddSource = %v, want %v", cfg.AddSource, tt.wantSource)
			}
			if cfg.Backend != tt.wantBackend {
				t.Errorf("Backend = %q, want %q", cfg.Backend, tt.wantBackend)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger.Error("JWT client request error", "client_name", "EmailClient", "retry_count", 1)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry["msg"] != "JWT client request error" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["client_name"] != "EmailClient" {
		t.Errorf("client_name = %v", entry["client_name"])
	}
	if entry["retry_count"] != float64(1) {
		t.Errorf("retry_count = %v", entry["retry_count"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("New(nil) returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogLevel_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "error", Format: FormatJSON, Output: &buf})

	logger.Info("dropped")
	logger.Warn("dropped")
	logger.Error("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "kept") {
		t.Errorf("expected only the error record, got %q", buf.String())
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger = WithComponent(WithCorrelationID(logger, "abc-123"), "submitter")
	logger.Info("test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry[CorrelationIDKey] != "abc-123" {
		t.Errorf("correlation_id = %v", entry[CorrelationIDKey])
	}
	if entry[ComponentKey] != "submitter" {
		t.Errorf("component = %v", entry[ComponentKey])
	}
}

func TestSanitizeSecret(t *testing.T) {
	if got := SanitizeSecret("super-secret"); got != "[REDACTED]" {
		t.Errorf("SanitizeSecret() = %q", got)
	}
	if got := SanitizeSecret(""); got != "" {
		t.Errorf("SanitizeSecret(\"\") = %q", got)
	}
}

func TestNewErrorLogger(t *testing.T) {
	for _, backend := range []Backend{BackendSlog, BackendZap} {
		t.Run(string(backend), func(t *testing.T) {
			var buf bytes.Buffer
			logger, flush, err := NewErrorLogger(&Config{Level: "info", Format: FormatJSON, Output: &buf, Backend: backend})
			if err != nil {
				t.Fatalf("NewErrorLogger() error = %v", err)
			}

			logger.Error("JWT API request error", "name", "jwt_api_request_error")
			if err := flush(); err != nil {
				t.Fatalf("flush() error = %v", err)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse JSON log %q: %v", buf.String(), err)
			}
			if entry["name"] != "jwt_api_request_error" {
				t.Errorf("name = %v", entry["name"])
			}
		})
	}
}

func TestApplyEnv_Lookup(t *testing.T) {
	env := map[string]string{"LOG_SOURCE": "true", "FORMCLIENT_LOG_LEVEL": "WARN"}
	cfg := &Config{Level: "info", Format: FormatText}

	ApplyEnv(cfg, func(k string) string { return env[k] })

	if cfg.Level != "warn" || !cfg.AddSource || cfg.Format != FormatText {
		t.Errorf("ApplyEnv() = %+v", cfg)
	}
}
