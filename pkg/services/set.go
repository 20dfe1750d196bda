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

package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/tombee/formclient/internal/log"
	"github.com/tombee/formclient/internal/tracing"
	"github.com/tombee/formclient/pkg/client"
	"github.com/tombee/formclient/pkg/config"
	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/httpclient"
	"github.com/tombee/formclient/pkg/metrics"
	"github.com/tombee/formclient/pkg/transport"
)

// Metric names. The namespace comes from configuration.
const (
	APIMetricName     = "api_request_duration_seconds"
	RequestMetricName = "request_attempt_duration_seconds"

	meterName = "github.com/tombee/formclient"

	apiMetricHelp     = "Duration of service calls including retries."
	requestMetricHelp = "Duration of single request attempts."
)

var serviceNames = []string{
	config.ServiceEmail,
	config.ServiceSMS,
	config.ServiceSubmitter,
	config.ServiceUserDataStore,
	config.ServiceUserFileStore,
}

// Set holds one client per service sharing a transport, logger, metrics and
// rate limiter.
type Set struct {
	Email         *EmailClient
	SMS           *SMSClient
	Submitter     *SubmitterClient
	UserDataStore *UserDataStoreClient
	UserFileStore *UserFileStoreClient

	// Transport is the shared executor
	Transport transport.Transport

	// Registry holds the timers when the prometheus or otel backend is
	// selected. Serve it with promhttp.HandlerFor.
	Registry *prometheus.Registry

	closers []func() error
}

// NewSet builds every client from cfg. opts are applied to each client after
// the configured ones.
func NewSet(cfg *config.Config, opts ...client.Option) (*Set, error) {
	if cfg == nil {
		return nil, &errors.ConfigError{Reason: "configuration is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &errors.ConfigError{Key: "validation", Reason: "configuration validation failed", Cause: err}
	}

	logCfg := &log.Config{
		Level:     cfg.Log.Level,
		Format:    log.Format(cfg.Log.Format),
		Output:    os.Stderr,
		AddSource: cfg.Log.AddSource,
		Backend:   log.Backend(cfg.Log.Backend),
	}
	logger, flush, err := log.NewErrorLogger(logCfg)
	if err != nil {
		return nil, &errors.ConfigError{Key: "log", Reason: "failed to build logger", Cause: err}
	}

	t, err := newTransport(cfg, logCfg)
	if err != nil {
		_ = flush()
		return nil, &errors.ConfigError{Key: "transport", Reason: "failed to build transport", Cause: err}
	}

	base := []client.Option{
		client.WithTransport(t),
		client.WithTimeout(cfg.Transport.Timeout),
		client.WithRetry(retryConfig(cfg.Transport.Retry)),
		client.WithRateLimiter(transport.NewRateLimiter(cfg.Transport.RateLimit.RPS, cfg.Transport.RateLimit.Burst)),
		client.WithLogger(logger),
		client.WithTokenTTL(cfg.Token.TTL),
	}

	closers := []func() error{func() error { return closeTransport(t) }, flush}
	fail := func(key, reason string, err error) (*Set, error) {
		runClosers(closers)
		return nil, &errors.ConfigError{Key: key, Reason: reason, Cause: err}
	}

	timers, err := newTimers(cfg.Metrics)
	if err != nil {
		return fail("metrics", "failed to build timers", err)
	}
	if timers.shutdown != nil {
		closers = append(closers, timers.shutdown)
	}
	if timers.api != nil {
		base = append(base, client.WithMetrics(timers.api, timers.request))
	}

	if exp := cfg.Tracing.Exporter; exp != "" && exp != tracing.ExporterNone {
		tcfg := tracing.DefaultConfig()
		tcfg.ServiceName = cfg.Tracing.ServiceName
		tcfg.SampleRate = cfg.Tracing.SampleRate
		tcfg.Exporter = tracing.ExporterConfig{
			Type:       exp,
			Endpoint:   cfg.Tracing.Endpoint,
			Headers:    cfg.Tracing.Headers,
			Insecure:   cfg.Tracing.Insecure,
			CACertPath: cfg.Tracing.CACertPath,
		}
		tp, err := tracing.NewProvider(context.Background(), tcfg)
		if err != nil {
			return fail("tracing", "failed to build tracer provider", err)
		}
		closers = append(closers, func() error { return tp.Shutdown(context.Background()) })
		base = append(base, client.WithTracerProvider(tp))
	}

	identity := client.Identity{
		ServiceSecret:     cfg.Identity.ServiceSecret,
		ServiceSlug:       cfg.Identity.ServiceSlug,
		EncodedPrivateKey: cfg.Identity.PrivateKey,
	}
	urls := cfg.Services.URLs()
	for _, name := range serviceNames {
		if urls[name] == "" {
			urls[name] = placeholderURL(name)
		}
	}

	s, err := buildSet(identity, urls, append(base, opts...))
	if err != nil {
		runClosers(closers)
		return nil, err
	}
	s.Transport = t
	s.Registry = timers.registry
	s.closers = closers
	return s, nil
}

// buildSet creates the five clients with per-service URLs.
func buildSet(identity client.Identity, urls map[string]string, opts []client.Option) (*Set, error) {
	with := func(name string) client.Identity {
		id := identity
		id.ServiceURL = urls[name]
		return id
	}

	s := &Set{}
	var err error
	if s.Email, err = NewEmailClient(with(config.ServiceEmail), opts...); err != nil {
		return nil, err
	}
	if s.SMS, err = NewSMSClient(with(config.ServiceSMS), opts...); err != nil {
		return nil, err
	}
	if s.Submitter, err = NewSubmitterClient(with(config.ServiceSubmitter), opts...); err != nil {
		return nil, err
	}
	if s.UserDataStore, err = NewUserDataStoreClient(with(config.ServiceUserDataStore), opts...); err != nil {
		return nil, err
	}
	if s.UserFileStore, err = NewUserFileStoreClient(with(config.ServiceUserFileStore), opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Clients returns the clients in a fixed order.
func (s *Set) Clients() []*client.Client {
	return []*client.Client{
		s.Email.Client,
		s.SMS.Client,
		s.Submitter.Client,
		s.UserDataStore.Client,
		s.UserFileStore.Client,
	}
}

// SetMetricsInstrumentation replaces the timers of every client.
func (s *Set) SetMetricsInstrumentation(api, request metrics.Timer) {
	for _, c := range s.Clients() {
		c.SetMetricsInstrumentation(api, request)
	}
}

// Close releases the transport, flushes pending spans and metrics, and
// flushes the logger.
func (s *Set) Close() error {
	err := runClosers(s.closers)
	s.closers = nil
	return err
}

// runClosers runs every closer and returns the first error.
func runClosers(closers []func() error) error {
	var first error
	for _, fn := range closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newTransport(cfg *config.Config, logCfg *log.Config) (transport.Transport, error) {
	tc := cfg.Transport
	var settings transport.TransportConfig
	switch tc.Type {
	case config.TransportHTTP:
		hc := httpclient.DefaultConfig()
		hc.Timeout = tc.Timeout
		if tc.UserAgent != "" {
			hc.UserAgent = tc.UserAgent
		}
		if logCfg.Backend != log.BackendZap {
			hc.Logger = log.WithComponent(log.New(logCfg), "transport")
		}
		settings = &transport.HTTPConfig{HTTP: hc}
	case config.TransportResty:
		settings = &transport.RestyConfig{Timeout: tc.Timeout, UserAgent: tc.UserAgent}
	case config.TransportOffline:
		settings = &transport.OfflineConfig{
			StoreType: tc.Offline.Store,
			Path:      tc.Offline.Path,
			TTL:       tc.Offline.TTL,
		}
	default:
		return nil, fmt.Errorf("unsupported transport %q", tc.Type)
	}
	return transport.DefaultRegistry().Create(tc.Type, settings)
}

func closeTransport(t transport.Transport) error {
	if c, ok := t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func retryConfig(rc config.RetryConfig) *client.RetryConfig {
	r := client.DefaultRetryConfig()
	r.MaxRetries = rc.MaxRetries
	r.InitialBackoff = rc.InitialBackoff
	r.MaxBackoff = rc.MaxBackoff
	r.BackoffFactor = rc.BackoffFactor
	return r
}

type timerSet struct {
	registry     *prometheus.Registry
	api, request metrics.Timer
	shutdown     func() error
}

// newTimers returns an empty set for the none backend. The otel backend
// records through an SDK meter provider whose reader is a Prometheus
// exporter on a private registry.
func newTimers(mc config.MetricsConfig) (timerSet, error) {
	switch mc.Backend {
	case config.MetricsPrometheus:
		reg := prometheus.NewRegistry()
		return timerSet{
			registry: reg,
			api: metrics.NewPrometheus(reg, metrics.PrometheusOpts{
				Namespace: mc.Namespace,
				Name:      APIMetricName,
				Help:      apiMetricHelp,
			}),
			request: metrics.NewPrometheus(reg, metrics.PrometheusOpts{
				Namespace: mc.Namespace,
				Name:      RequestMetricName,
				Help:      requestMetricHelp,
			}),
		}, nil
	case config.MetricsOTel:
		reg := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return timerSet{}, err
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		shutdown := func() error { return mp.Shutdown(context.Background()) }
		meter := mp.Meter(meterName)

		api, err := metrics.NewOTel(meter, otelName(mc.Namespace, APIMetricName), apiMetricHelp)
		if err != nil {
			_ = shutdown()
			return timerSet{}, err
		}
		request, err := metrics.NewOTel(meter, otelName(mc.Namespace, RequestMetricName), requestMetricHelp)
		if err != nil {
			_ = shutdown()
			return timerSet{}, err
		}
		return timerSet{registry: reg, api: api, request: request, shutdown: shutdown}, nil
	default:
		return timerSet{}, nil
	}
}

func otelName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
