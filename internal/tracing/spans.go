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

package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/tombee/formclient"

// Span names.
const (
	SpanRequest = "formclient.request"
	SpanAttempt = "formclient.attempt"
)

// Attribute keys.
const (
	AttrClient        = attribute.Key("formclient.client")
	AttrMethod        = attribute.Key("http.request.method")
	AttrURLTemplate   = attribute.Key("url.template")
	AttrBaseURL       = attribute.Key("server.address")
	AttrAttempt       = attribute.Key("formclient.attempt")
	AttrStatusCode    = attribute.Key("http.response.status_code")
	AttrCorrelationID = attribute.Key("formclient.correlation_id")
	AttrErrorCode     = attribute.Key("error.type")
)

// Tracer starts the spans around service requests.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer on tp. A nil provider yields a no-op tracer.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(instrumentationName)}
}

// StartRequest starts the span covering a whole call, retries included.
func (t *Tracer) StartRequest(ctx context.Context, client, method, baseURL, urlTemplate string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		AttrClient.String(client),
		AttrMethod.String(method),
		AttrBaseURL.String(baseURL),
		AttrURLTemplate.String(urlTemplate),
	}
	if id := FromContextOrEmpty(ctx); id != "" {
		attrs = append(attrs, AttrCorrelationID.String(id.String()))
	}
	return t.tracer.Start(ctx, SpanRequest, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// StartAttempt starts the span for one attempt. Attempts are numbered from 1.
func (t *Tracer) StartAttempt(ctx context.Context, attempt int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanAttempt, trace.WithAttributes(AttrAttempt.Int(attempt)))
}

// End records the outcome on span and ends it. status is the HTTP status if
// one was received, and code the classified error code on failure.
func End(span trace.Span, status int, code string, err error) {
	if status > 0 {
		span.SetAttributes(AttrStatusCode.Int(status))
	}
	if err != nil {
		if code != "" {
			span.SetAttributes(AttrErrorCode.String(code))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
