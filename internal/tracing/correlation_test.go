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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCorrelationID(t *testing.T) {
	id1 := NewCorrelationID()
	id2 := NewCorrelationID()

	assert.True(t, id1.IsValid())
	assert.Len(t, id1.String(), 36)
	assert.NotEqual(t, id1, id2)
}

func TestCorrelationID_IsValid(t *testing.T) {
	tests := []struct {
		id    CorrelationID
		valid bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"550E8400-E29B-41D4-A716-446655440000", true},
		{"not-a-uuid", false},
		{"", false},
		{"550e8400e29b41d4a716446655440000", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.id.IsValid())
		})
	}
}

func TestFromContextOrEmpty(t *testing.T) {
	assert.Equal(t, CorrelationID(""), FromContextOrEmpty(context.Background()))

	id := NewCorrelationID()
	ctx := ToContext(context.Background(), id)
	assert.Equal(t, id, FromContextOrEmpty(ctx))
}

func TestEnsure(t *testing.T) {
	ctx, id := Ensure(context.Background())
	assert.True(t, id.IsValid())
	assert.Equal(t, id, FromContextOrEmpty(ctx))

	same, again := Ensure(ctx)
	assert.Equal(t, id, again)
	assert.Equal(t, ctx, same)

	invalid := ToContext(context.Background(), "bogus")
	_, replaced := Ensure(invalid)
	assert.NotEqual(t, CorrelationID("bogus"), replaced)
}

func TestInjectIntoHeaders(t *testing.T) {
	headers := map[string]string{}
	InjectIntoHeaders(context.Background(), headers)
	assert.Empty(t, headers)

	id := NewCorrelationID()
	InjectIntoHeaders(ToContext(context.Background(), id), headers)
	assert.Equal(t, id.String(), headers[HeaderCorrelationID])
}
