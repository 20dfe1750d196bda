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

// Package tracing carries request correlation and OpenTelemetry spans for the
// service clients.
//
// Every call gets a correlation ID, taken from the context or generated, which
// travels in the X-Correlation-ID header. When a tracer provider is supplied
// each call records a formclient.request span with one formclient.attempt
// child per attempt, and the W3C trace context is propagated to the remote
// service. NewProvider builds an SDK provider exporting to the console or to
// an OTLP collector.
package tracing
