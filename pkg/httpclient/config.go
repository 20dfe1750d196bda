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

package httpclient

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultUserAgent identifies the service clients on the wire.
const DefaultUserAgent = "formclient/1.0"

// Config configures the *http.Client returned by New.
type Config struct {
	// Timeout bounds a single attempt, headers and body included.
	Timeout time.Duration

	// DialTimeout bounds connection setup. Zero means 10s.
	DialTimeout time.Duration

	// UserAgent is sent when the request carries none.
	UserAgent string

	// Logger receives one record per round trip. Nil discards them.
	Logger *slog.Logger

	// RedactParams extends the query parameters masked in logged URLs.
	RedactParams []string
}

// DefaultConfig returns the configuration used by the http transport.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		DialTimeout: 10 * time.Second,
		UserAgent:   DefaultUserAgent,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("httpclient: timeout must be positive, got %v", c.Timeout)
	case c.DialTimeout < 0:
		return fmt.Errorf("httpclient: dial timeout must not be negative, got %v", c.DialTimeout)
	case c.UserAgent == "":
		return fmt.Errorf("httpclient: user agent is required")
	}
	return nil
}

func (c *Config) dialTimeout() time.Duration {
	if c.DialTimeout == 0 {
		return 10 * time.Second
	}
	return c.DialTimeout
}
