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
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tombee/formclient/pkg/client"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	testSlug      = "my-form"
	testUserID    = "user-1"
	testUserToken = "user-token-user-token-user-token"
)

// captured is one request seen by a fakeService. GET payloads are decoded
// from the query into Body.
type captured struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// fakeService answers every request with a fixed status and body.
type fakeService struct {
	mu     sync.Mutex
	reqs   []captured
	status int
	reply  string
}

func newFakeService(t *testing.T, status int, reply string) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{status: status, reply: reply}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	c := captured{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}

	var raw []byte
	if r.Method == http.MethodGet {
		if p := r.URL.Query().Get("payload"); p != "" {
			raw, _ = base64.StdEncoding.DecodeString(p)
		}
	} else {
		raw, _ = io.ReadAll(r.Body)
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &c.Body)
	}

	f.mu.Lock()
	f.reqs = append(f.reqs, c)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply)
}

func (f *fakeService) last(t *testing.T) captured {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.reqs, "no request reached the service")
	return f.reqs[len(f.reqs)-1]
}

func (f *fakeService) respond(status int, reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.reply = status, reply
}

func testIdentity(url string) client.Identity {
	return client.Identity{
		ServiceSecret: testSecret,
		ServiceSlug:   testSlug,
		ServiceURL:    url,
	}
}

// noRetry keeps failing calls to one attempt.
func noRetry() client.Option {
	cfg := client.DefaultRetryConfig()
	cfg.MaxRetries = 0
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	return client.WithRetry(cfg)
}
