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
	"crypto/tls"
	"net"
	"net/http"
)

// New returns an *http.Client for one attempt per call. It never retries;
// the request executor decides whether another attempt is made.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: cfg.dialTimeout()}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   cfg.dialTimeout(),
		ResponseHeaderTimeout: cfg.Timeout,
	}

	return &http.Client{
		Transport: &roundTripLogger{
			next:      base,
			userAgent: cfg.UserAgent,
			logger:    cfg.Logger,
			redact:    newRedactor(cfg.RedactParams),
		},
		Timeout: cfg.Timeout,
	}, nil
}
