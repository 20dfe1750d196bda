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

package export

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// DefaultURLPath is where the HTTP exporter posts spans.
const DefaultURLPath = "/v1/traces"

// ErrNoEndpoint is returned when a Collector has no endpoint.
var ErrNoEndpoint = errors.New("collector endpoint is required")

// Collector addresses an OTLP collector over gRPC or HTTP.
type Collector struct {
	// Endpoint is host:port, e.g. "collector:4317".
	Endpoint string

	// URLPath applies to HTTP only.
	URLPath string

	Insecure bool

	// CACertPath replaces the system roots when TLSConfig is nil.
	CACertPath string
	TLSConfig  *tls.Config

	Headers map[string]string
}

// transportTLS returns the TLS configuration to dial with, nil when insecure.
func (c Collector) transportTLS() (*tls.Config, error) {
	if c.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if c.Insecure {
		return nil, nil
	}
	cfg := c.TLSConfig
	if cfg == nil {
		built, err := BuildTLSConfig(TLSConfigInput{Enabled: true, CACertPath: c.CACertPath})
		if err != nil {
			return nil, err
		}
		cfg = built
	}
	if err := ValidateTLSConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid TLS config: %w", err)
	}
	return cfg, nil
}

// NewOTLPExporter creates a gRPC span exporter for c.
func NewOTLPExporter(ctx context.Context, c Collector) (trace.SpanExporter, error) {
	tlsConfig, err := c.transportTLS()
	if err != nil {
		return nil, err
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.Endpoint)}
	if tlsConfig == nil {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(c.Headers))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp grpc exporter: %w", err)
	}
	return exporter, nil
}

// NewOTLPHTTPExporter creates an HTTP span exporter for c. Payloads are
// gzip compressed.
func NewOTLPHTTPExporter(ctx context.Context, c Collector) (trace.SpanExporter, error) {
	tlsConfig, err := c.transportTLS()
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(c.Endpoint),
		otlptracehttp.WithURLPath(cmp.Or(c.URLPath, DefaultURLPath)),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	if tlsConfig == nil {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConfig))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(c.Headers))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp http exporter: %w", err)
	}
	return exporter, nil
}
