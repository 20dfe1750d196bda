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
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tombee/formclient/internal/tracing/export"
)

// Exporter types.
const (
	ExporterNone     = "none"
	ExporterConsole  = "console"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlp-http"
)

// Config configures the tracer provider built by NewProvider.
type Config struct {
	// ServiceName identifies this process in traces.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// SampleRate is the fraction of root traces recorded (0.0 - 1.0).
	// Child spans follow their parent's decision.
	SampleRate float64

	// Exporter selects where spans go.
	Exporter ExporterConfig

	// BatchSize is the maximum number of spans per export batch (default: 512).
	BatchSize int

	// BatchInterval is how often to flush spans (default: 5s).
	BatchInterval time.Duration
}

// ExporterConfig defines an export destination.
type ExporterConfig struct {
	// Type is "console", "otlp", "otlp-http" or "none".
	Type string

	// Endpoint is the OTLP receiver, e.g. "localhost:4317".
	Endpoint string

	// Headers are sent with every export request.
	Headers map[string]string

	// Insecure disables TLS.
	Insecure bool

	// CACertPath adds a CA certificate to verify the receiver.
	CACertPath string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "formclient",
		ServiceVersion: "unknown",
		SampleRate:     1.0,
		Exporter:       ExporterConfig{Type: ExporterNone},
		BatchSize:      512,
		BatchInterval:  5 * time.Second,
	}
}

// NewSampler returns a parent-based sampler recording rate of root traces.
func NewSampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1.0:
		root = sdktrace.AlwaysSample()
	case rate <= 0.0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// NewProvider builds an SDK tracer provider exporting through cfg.Exporter.
// The provider is not installed globally; pass it to the clients and call
// Shutdown when done. opts are applied after the configured ones.
func NewProvider(ctx context.Context, cfg Config, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	all := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(NewSampler(cfg.SampleRate)),
	}

	exporter, err := CreateExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		var batchOpts []sdktrace.BatchSpanProcessorOption
		if cfg.BatchSize > 0 {
			batchOpts = append(batchOpts, sdktrace.WithMaxExportBatchSize(cfg.BatchSize))
		}
		if cfg.BatchInterval > 0 {
			batchOpts = append(batchOpts, sdktrace.WithBatchTimeout(cfg.BatchInterval))
		}
		all = append(all, sdktrace.WithBatcher(exporter, batchOpts...))
	}

	return sdktrace.NewTracerProvider(append(all, opts...)...), nil
}

// CreateExporter creates a span exporter from configuration. The none type
// returns a nil exporter.
func CreateExporter(ctx context.Context, cfg ExporterConfig) (sdktrace.SpanExporter, error) {
	collector := export.Collector{
		Endpoint:   cfg.Endpoint,
		Insecure:   cfg.Insecure,
		CACertPath: cfg.CACertPath,
		Headers:    cfg.Headers,
	}

	switch cfg.Type {
	case ExporterConsole:
		return export.NewConsoleExporter(nil, true)
	case ExporterOTLP:
		return export.NewOTLPExporter(ctx, collector)
	case ExporterOTLPHTTP:
		return export.NewOTLPHTTPExporter(ctx, collector)
	case ExporterNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Type)
	}
}
