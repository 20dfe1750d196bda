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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZap_JSON(t *testing.T) {
	var buf bytes.Buffer
	z, err := NewZap(&Config{Level: "warn", Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	logger := NewZapLogger(z)
	z.Info("dropped")
	logger.Error("JWT client request error: SMSClient", "client_name", "SMSClient", "retry_count", 2)
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "JWT client request error: SMSClient", entry["msg"])
	assert.Equal(t, "SMSClient", entry["client_name"])
	assert.Equal(t, float64(2), entry["retry_count"])
	assert.Contains(t, entry, "ts")
}

func TestNewZap_Console(t *testing.T) {
	var buf bytes.Buffer
	z, err := NewZap(&Config{Level: "info", Format: FormatText, Output: &buf})
	require.NoError(t, err)

	z.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNewZap_InvalidLevel(t *testing.T) {
	_, err := NewZap(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewZapLogger_Nil(t *testing.T) {
	logger := NewZapLogger(nil)
	logger.Error("discarded", "k", "v")
}
