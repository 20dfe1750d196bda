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

package client

import (
	"fmt"
	"math/rand"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/transport"
)

// RetryConfig configures retry behavior for service calls.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first (default: 3)
	MaxRetries int

	// InitialBackoff is the initial backoff duration (default: 1s)
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration (default: 30s)
	MaxBackoff time.Duration

	// BackoffFactor is the exponential backoff multiplier (default: 2.0)
	BackoffFactor float64

	// RetryableStatuses lists the HTTP statuses that are retried
	// Default: [500, 502, 503, 504, 521, 522, 524]
	RetryableStatuses []int

	// RetryableCodes lists the system error codes that are retried
	RetryableCodes []string
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffFactor:     2.0,
		RetryableStatuses: []int{500, 502, 503, 504, 521, 522, 524},
		RetryableCodes: []string{
			transport.CodeTimedOut,
			transport.CodeConnReset,
			transport.CodeAddrInUse,
			transport.CodeConnRefused,
			transport.CodePipe,
			transport.CodeNotFound,
			transport.CodeNetUnreachable,
			transport.CodeAgain,
		},
	}
}

// Validate checks if the retry configuration is valid.
func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got %d", c.MaxRetries)
	}
	if c.InitialBackoff < 0 {
		return fmt.Errorf("initial_backoff must be non-negative, got %v", c.InitialBackoff)
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff (%v) must be >= initial_backoff (%v)", c.MaxBackoff, c.InitialBackoff)
	}
	if c.BackoffFactor < 1.0 {
		return fmt.Errorf("backoff_factor must be >= 1.0, got %f", c.BackoffFactor)
	}
	return nil
}

// IsRetryableStatus returns true if the given status code should be retried.
// Statuses 401 to 499 are never retried.
func (c *RetryConfig) IsRetryableStatus(statusCode int) bool {
	if statusCode > 400 && statusCode < 500 {
		return false
	}
	return slices.Contains(c.RetryableStatuses, statusCode)
}

// shouldRetry reports whether err from one attempt is worth another, and any
// Retry-After delay the server asked for.
func (c *RetryConfig) shouldRetry(err error) (bool, time.Duration) {
	if _, ok := errors.AsRequestError(err); ok {
		return false, 0
	}

	var terr *transport.TransportError
	if !errors.As(err, &terr) {
		return false, 0
	}

	if terr.StatusCode > 0 {
		if !c.IsRetryableStatus(terr.StatusCode) {
			return false, 0
		}
		return true, extractRetryAfter(terr)
	}

	return slices.Contains(c.RetryableCodes, terr.Code), 0
}

// calculateBackoff calculates the backoff delay for a retry.
//
// Formula: delay = min(InitialBackoff * (BackoffFactor ^ (retry - 1)), MaxBackoff) + jitter
// Jitter: random [0ms, 100ms]
func calculateBackoff(config *RetryConfig, retry int, retryAfter time.Duration) time.Duration {
	baseDelay := float64(config.InitialBackoff) * pow(config.BackoffFactor, retry-1)

	if baseDelay > float64(config.MaxBackoff) {
		baseDelay = float64(config.MaxBackoff)
	}

	delay := time.Duration(baseDelay)

	// Retry-After wins over the computed delay but never exceeds MaxBackoff
	if retryAfter > 0 {
		if retryAfter > delay {
			delay = retryAfter
		}
		if delay > config.MaxBackoff {
			delay = config.MaxBackoff
		}
	}

	jitter := time.Duration(rand.Int63n(101)) * time.Millisecond

	return delay + jitter
}

// extractRetryAfter reads the Retry-After value recorded by the transport.
// Returns 0 if not present or invalid.
//
// Supports two formats:
// - Numeric: seconds to wait (e.g., "120")
// - HTTP-date: absolute time (e.g., "Wed, 21 Oct 2015 07:28:00 GMT")
func extractRetryAfter(err *transport.TransportError) time.Duration {
	raw, ok := err.Metadata[transport.MetadataRetryAfter].(string)
	if !ok {
		return 0
	}

	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	retryTime, parseErr := http.ParseTime(raw)
	if parseErr != nil {
		return 0
	}

	delay := time.Until(retryTime)
	if delay < 0 {
		return 0
	}
	return delay
}

// pow calculates base^exp for non-negative integer exponents.
func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
