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

	"github.com/google/uuid"
)

// HeaderCorrelationID carries the correlation ID on outbound requests.
const HeaderCorrelationID = "X-Correlation-ID"

// CorrelationID ties the attempts, log lines and spans of one client call
// together. Valid IDs are hyphenated RFC 4122 UUIDs.
type CorrelationID string

type correlationKey struct{}

// NewCorrelationID returns a random (version 4) correlation ID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString())
}

func (c CorrelationID) String() string {
	return string(c)
}

// IsValid reports whether c is a hyphenated UUID.
func (c CorrelationID) IsValid() bool {
	if len(c) != 36 {
		return false
	}
	_, err := uuid.Parse(string(c))
	return err == nil
}

// ToContext returns a copy of ctx carrying id.
func ToContext(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// FromContextOrEmpty returns the ID stored in ctx, or "".
func FromContextOrEmpty(ctx context.Context) CorrelationID {
	id, _ := ctx.Value(correlationKey{}).(CorrelationID)
	return id
}

// Ensure keeps a valid ID already in ctx and otherwise attaches a new one.
func Ensure(ctx context.Context) (context.Context, CorrelationID) {
	if id := FromContextOrEmpty(ctx); id.IsValid() {
		return ctx, id
	}
	id := NewCorrelationID()
	return ToContext(ctx, id), id
}

// InjectIntoHeaders sets HeaderCorrelationID when ctx carries an ID.
func InjectIntoHeaders(ctx context.Context, headers map[string]string) {
	if id := FromContextOrEmpty(ctx); id != "" {
		headers[HeaderCorrelationID] = string(id)
	}
}
