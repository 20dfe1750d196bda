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
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/formclient/pkg/metrics"
	"github.com/tombee/formclient/pkg/transport"
)

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 30 * time.Second

type options struct {
	name           string
	transport      transport.Transport
	timeout        time.Duration
	retry          *RetryConfig
	limiter        transport.RateLimiter
	logger         Logger
	apiMetrics     metrics.Timer
	requestMetrics metrics.Timer
	tracerProvider trace.TracerProvider
	tokenTTL       time.Duration
}

func defaultOptions() options {
	return options{
		name:    DefaultName,
		timeout: DefaultTimeout,
		retry:   DefaultRetryConfig(),
	}
}

// Option configures a Client.
type Option func(*options)

// WithName sets the client name. Errors raised by the client carry the
// identity name+"Error".
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithTransport sets the single-attempt executor. The default is the net/http transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRetry replaces the retry policy. A nil config keeps the default.
func WithRetry(cfg *RetryConfig) Option {
	return func(o *options) {
		if cfg != nil {
			o.retry = cfg
		}
	}
}

// WithRateLimiter makes every attempt wait on limiter first.
func WithRateLimiter(limiter transport.RateLimiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

// WithLogger sets the logger used when a call passes none.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the per-call and per-attempt timers.
func WithMetrics(api, request metrics.Timer) Option {
	return func(o *options) {
		o.apiMetrics = api
		o.requestMetrics = request
	}
}

// WithTracerProvider sets the provider spans are started on.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithTokenTTL adds an exp claim ttl after issue to every access token.
func WithTokenTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.tokenTTL = ttl
	}
}
