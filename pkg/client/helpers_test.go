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
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tombee/formclient/pkg/metrics"
	"github.com/tombee/formclient/pkg/transport"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var (
	signingKeyOnce    sync.Once
	signingKey        *rsa.PrivateKey
	signingKeyEncoded string
)

// testSigningKey returns a shared RSA key and its base64 PEM encoding.
func testSigningKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	signingKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return
		}
		block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
		signingKey = key
		signingKeyEncoded = base64.StdEncoding.EncodeToString(pem.EncodeToMemory(block))
	})
	require.NotNil(t, signingKey, "failed to generate RSA key")
	return signingKey, signingKeyEncoded
}

func testIdentity(serviceURL string) Identity {
	return Identity{
		ServiceSecret: testSecret,
		ServiceSlug:   "svc",
		ServiceURL:    serviceURL,
	}
}

// fastRetry is the default policy with millisecond backoff.
func fastRetry(maxRetries int) *RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = maxRetries
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

// scriptedTransport replays one step per attempt, repeating the last step.
type scriptedTransport struct {
	mu    sync.Mutex
	steps []func(ctx context.Context, req *transport.Request) (*transport.Response, error)
	calls []*transport.Request
}

func (s *scriptedTransport) Name() string { return "scripted" }

func (s *scriptedTransport) Execute(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, req)
	step := s.steps[min(n, len(s.steps)-1)]
	s.mu.Unlock()
	return step(ctx, req)
}

func (s *scriptedTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func respond(status int, body string) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(context.Context, *transport.Request) (*transport.Response, error) {
		return &transport.Response{StatusCode: status, StatusMessage: "OK", Body: []byte(body)}, nil
	}
}

func fail(err *transport.TransportError) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(context.Context, *transport.Request) (*transport.Response, error) {
		return nil, err
	}
}

func statusError(status int, body string) *transport.TransportError {
	return &transport.TransportError{
		Type:       transport.ErrorTypeServer,
		StatusCode: status,
		Name:       transport.NameHTTPError,
		Message:    "HTTP error",
		Body:       []byte(body),
		Retryable:  status >= 500,
	}
}

type timing struct {
	start  metrics.Labels
	result metrics.Labels
}

// recordingTimer keeps every completed measurement.
type recordingTimer struct {
	mu      sync.Mutex
	started int
	ended   []timing
}

func (r *recordingTimer) StartTimer(labels metrics.Labels) metrics.EndFunc {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
	return func(result metrics.Labels) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ended = append(r.ended, timing{start: labels, result: result})
	}
}

func (r *recordingTimer) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ended))
	for i, e := range r.ended {
		out[i] = e.result[metrics.LabelOutcome]
	}
	return out
}

type logEntry struct {
	msg    string
	fields map[string]any
}

// recordingLogger keeps every Error call.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) Error(msg string, args ...any) {
	fields := make(map[string]any)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{msg: msg, fields: fields})
}

func (l *recordingLogger) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i], _ = e.fields["name"].(string)
	}
	return out
}
