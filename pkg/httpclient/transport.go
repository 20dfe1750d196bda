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
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/formclient/internal/log"
	"github.com/tombee/formclient/internal/tracing"
)

// roundTripLogger stamps outbound requests with the user agent and the
// correlation ID from the context, then logs the outcome.
type roundTripLogger struct {
	next      http.RoundTripper
	userAgent string
	logger    *slog.Logger
	redact    *redactor
}

func (t *roundTripLogger) RoundTrip(req *http.Request) (*http.Response, error) {
	t.stamp(req)

	start := time.Now()
	resp, err := t.transport().RoundTrip(req)
	if t.logger == nil {
		return resp, err
	}

	logger := t.logger
	if id := req.Header.Get(tracing.HeaderCorrelationID); id != "" {
		logger = log.WithCorrelationID(logger, id)
	}
	attrs := []any{
		"method", req.Method,
		"url", t.redact.url(req.URL),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}

	ctx := req.Context()
	switch {
	case err != nil:
		logger.WarnContext(ctx, "round trip failed", append(attrs, "error", err.Error())...)
	case resp.StatusCode >= http.StatusBadRequest:
		logger.WarnContext(ctx, "round trip", append(attrs, "status", resp.StatusCode)...)
	default:
		logger.DebugContext(ctx, "round trip", append(attrs, "status", resp.StatusCode)...)
	}
	return resp, err
}

func (t *roundTripLogger) stamp(req *http.Request) {
	if req.Header.Get("User-Agent") == "" && t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get(tracing.HeaderCorrelationID) != "" {
		return
	}
	if id := tracing.FromContextOrEmpty(req.Context()); id.IsValid() {
		req.Header.Set(tracing.HeaderCorrelationID, id.String())
	}
}

func (t *roundTripLogger) transport() http.RoundTripper {
	if t.next == nil {
		return http.DefaultTransport
	}
	return t.next
}
