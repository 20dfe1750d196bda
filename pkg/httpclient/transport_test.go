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
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tombee/formclient/internal/tracing"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRoundTripLogger_StampsHeaders(t *testing.T) {
	var agent, corr string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		corr = r.Header.Get(tracing.HeaderCorrelationID)
	}))
	defer srv.Close()

	rt := &roundTripLogger{userAgent: "formclient-test", redact: newRedactor(nil)}
	id := tracing.NewCorrelationID()
	req, err := http.NewRequestWithContext(tracing.ToContext(context.Background(), id), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("User-Agent", "")

	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if agent != "formclient-test" {
		t.Errorf("User-Agent = %q", agent)
	}
	if corr != id.String() {
		t.Errorf("correlation ID = %q, want %q", corr, id)
	}
}

func TestRoundTripLogger_KeepsCallerCorrelationID(t *testing.T) {
	var corr string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr = r.Header.Get(tracing.HeaderCorrelationID)
	}))
	defer srv.Close()

	rt := &roundTripLogger{redact: newRedactor(nil)}
	ctx := tracing.ToContext(context.Background(), tracing.NewCorrelationID())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(tracing.HeaderCorrelationID, "from-caller")

	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if corr != "from-caller" {
		t.Errorf("correlation ID = %q, want from-caller", corr)
	}
}

func TestRoundTripLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success is debug", http.StatusOK, `"level":"DEBUG"`},
		{"client error is warn", http.StatusNotFound, `"level":"WARN"`},
		{"server error is warn", http.StatusBadGateway, `"level":"WARN"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			var buf bytes.Buffer
			rt := &roundTripLogger{logger: newTestLogger(&buf), redact: newRedactor(nil)}
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/service/s/user/u?payload=c2VjcmV0", nil)
			if err != nil {
				t.Fatal(err)
			}

			resp, err := rt.RoundTrip(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("log %s missing %s", out, tt.wantLevel)
			}
			if strings.Contains(out, "c2VjcmV0") {
				t.Errorf("log leaked payload: %s", out)
			}
		})
	}
}

func TestRoundTripLogger_LogsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	rt := &roundTripLogger{logger: newTestLogger(&buf), redact: newRedactor(nil)}
	req, err := http.NewRequest(http.MethodPost, url+"/sms", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected connection error")
	}
	if out := buf.String(); !strings.Contains(out, "round trip failed") || !strings.Contains(out, `"error"`) {
		t.Errorf("unexpected log: %s", out)
	}
}
