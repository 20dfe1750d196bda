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

// Package httpclient builds the *http.Client behind the http transport.
//
// Every request gets a User-Agent and, when the context carries one, an
// X-Correlation-ID header. Each round trip is logged at debug level, or at
// warn for failures and 4xx/5xx responses, with payload and credential
// query parameters masked.
//
// The client performs exactly one round trip per call. A retried request
// needs a freshly signed access token, so retries belong to pkg/client.
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Logger = logger
//	hc, err := httpclient.New(cfg)
package httpclient
