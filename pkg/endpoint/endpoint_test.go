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

package endpoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		template string
		ctx      map[string]string
		want     string
	}{
		{
			name:     "literal substitution",
			base:     "http://datastore",
			template: "/service/:serviceSlug/user/:userId",
			ctx:      map[string]string{"serviceSlug": "svc", "userId": "u1"},
			want:     "http://datastore/service/svc/user/u1",
		},
		{
			name:     "no parameters",
			base:     "http://email",
			template: "/email",
			want:     "http://email/email",
		},
		{
			name:     "values are path escaped",
			base:     "http://filestore",
			template: "/service/:serviceSlug/user/:userId/:fingerprint",
			ctx:      map[string]string{"serviceSlug": "svc", "userId": "a b/c", "fingerprint": "28d-x?y"},
			want:     "http://filestore/service/svc/user/a%20b%2Fc/28d-x%3Fy",
		},
		{
			name:     "trailing slash on base",
			base:     "http://submitter/",
			template: "/submission/:submissionId",
			ctx:      map[string]string{"submissionId": "42"},
			want:     "http://submitter/submission/42",
		},
		{
			name:     "optional parameter absent",
			base:     "http://x",
			template: "/user/:userId/:fingerprint?",
			ctx:      map[string]string{"userId": "u1"},
			want:     "http://x/user/u1",
		},
		{
			name:     "optional parameter present",
			base:     "http://x",
			template: "/user/:userId/:fingerprint?",
			ctx:      map[string]string{"userId": "u1", "fingerprint": "f"},
			want:     "http://x/user/u1/f",
		},
		{
			name:     "extra context is ignored",
			base:     "http://x",
			template: "/sms",
			ctx:      map[string]string{"unused": "1"},
			want:     "http://x/sms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.base, tt.template, tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_MissingParameter(t *testing.T) {
	_, err := Compile("http://x", "/service/:serviceSlug/user/:userId", map[string]string{"serviceSlug": "svc"})
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "userId", compileErr.Param)
	assert.Contains(t, err.Error(), "missing parameter")
}

func TestParse_EmptyName(t *testing.T) {
	_, err := Parse("/user/:/x")
	require.Error(t, err)
}

func TestTemplate_Params(t *testing.T) {
	tmpl := MustParse("/service/:serviceSlug/user/:userId/:fingerprint")
	assert.Equal(t, []string{"serviceSlug", "userId", "fingerprint"}, tmpl.Params())
	assert.Equal(t, "/service/:serviceSlug/user/:userId/:fingerprint", tmpl.String())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse(":") })
}
