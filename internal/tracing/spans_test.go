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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	tracer := NewTracer(tp)
	ctx, _ := Ensure(context.Background())

	ctx, req := tracer.StartRequest(ctx, "EmailClient", "POST", "http://email", "/email")
	_, first := tracer.StartAttempt(ctx, 1)
	End(first, 503, "503", errors.New("service unavailable"))
	_, second := tracer.StartAttempt(ctx, 2)
	End(second, 200, "", nil)
	End(req, 200, "", nil)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, SpanAttempt, spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, SpanAttempt, spans[1].Name())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)

	parent := spans[2]
	assert.Equal(t, SpanRequest, parent.Name())
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent().SpanID())

	attrs := map[string]string{}
	for _, kv := range parent.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "EmailClient", attrs[string(AttrClient)])
	assert.Equal(t, "POST", attrs[string(AttrMethod)])
	assert.Equal(t, "/email", attrs[string(AttrURLTemplate)])
	assert.NotEmpty(t, attrs[string(AttrCorrelationID)])
}

func TestNewTracer_NilProvider(t *testing.T) {
	tracer := NewTracer(nil)
	_, span := tracer.StartRequest(context.Background(), "c", "GET", "http://x", "/")
	assert.False(t, span.SpanContext().IsValid())
	End(span, 0, "", nil)
}
