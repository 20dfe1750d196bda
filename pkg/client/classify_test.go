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
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/transport"
)

func TestClassify(t *testing.T) {
	var syntaxErr *json.SyntaxError
	parseErr := json.Unmarshal([]byte("{"), &map[string]any{})
	require.ErrorAs(t, parseErr, &syntaxErr)

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "client status",
			err:         &transport.TransportError{StatusCode: 404, Name: transport.NameHTTPError},
			wantCode:    "404",
			wantMessage: "404",
		},
		{
			name:        "client status ignores body",
			err:         &transport.TransportError{StatusCode: 422, Body: []byte(`{"name":"EVALIDATION"}`)},
			wantCode:    "422",
			wantMessage: "422",
		},
		{
			name:        "server status with error name",
			err:         statusError(500, `{"name":"EBROKEN","code":"ECODE"}`),
			wantCode:    "500",
			wantMessage: "EBROKEN",
		},
		{
			name:        "server status with error code",
			err:         statusError(503, `{"code":"ESOMECODE"}`),
			wantCode:    "503",
			wantMessage: "ESOMECODE",
		},
		{
			name:        "server status with empty object",
			err:         statusError(502, `{}`),
			wantCode:    "502",
			wantMessage: errors.MessageUnspecified,
		},
		{
			name:        "server status without body",
			err:         statusError(500, ""),
			wantCode:    "500",
			wantMessage: errors.MessageNoError,
		},
		{
			name:        "status 400 is not a client status",
			err:         statusError(400, `{"name":"EBADREQUEST"}`),
			wantCode:    "400",
			wantMessage: "EBADREQUEST",
		},
		{
			name:        "error object without status",
			err:         &transport.TransportError{Body: []byte(`{"name":"HTTPError"}`)},
			wantCode:    "404",
			wantMessage: "HTTPError",
		},
		{
			name:        "error object without name or code",
			err:         &transport.TransportError{Body: []byte(`{"detail":"boom"}`)},
			wantCode:    "500",
			wantMessage: errors.MessageUnspecified,
		},
		{
			name:        "relayed response with code",
			err:         &transport.TransportError{Response: &transport.Response{Body: []byte(`{"name":"EUPSTREAM","code":"418"}`)}},
			wantCode:    "418",
			wantMessage: "EUPSTREAM",
		},
		{
			name:        "relayed response looked up",
			err:         &transport.TransportError{Response: &transport.Response{Body: []byte(`{"name":"ENOTFOUND"}`)}},
			wantCode:    "502",
			wantMessage: "ENOTFOUND",
		},
		{
			name:        "relayed response without name",
			err:         &transport.TransportError{Response: &transport.Response{Body: []byte(`{}`)}},
			wantCode:    "500",
			wantMessage: errors.MessageNoError,
		},
		{
			name:        "dns failure",
			err:         &transport.TransportError{Type: transport.ErrorTypeConnection, Code: transport.CodeNotFound},
			wantCode:    "502",
			wantMessage: "ENOTFOUND",
		},
		{
			name:        "connection refused",
			err:         &transport.TransportError{Type: transport.ErrorTypeConnection, Code: transport.CodeConnRefused},
			wantCode:    "503",
			wantMessage: "ECONNREFUSED",
		},
		{
			name:        "timeout",
			err:         &transport.TransportError{Type: transport.ErrorTypeTimeout, Code: transport.CodeTimedOut},
			wantCode:    "500",
			wantMessage: "ETIMEDOUT",
		},
		{
			name:        "plain error",
			err:         fmt.Errorf("boom"),
			wantCode:    "500",
			wantMessage: errors.MessageNoError,
		},
		{
			name:        "context cancelled",
			err:         context.Canceled,
			wantCode:    "500",
			wantMessage: transport.CodeCanceled,
		},
		{
			name:        "unparseable success body",
			err:         &bodyError{status: 200, cause: parseErr},
			wantCode:    "500",
			wantMessage: errors.MessageInvalidPayload,
		},
		{
			name:        "non-object success body",
			err:         &bodyError{status: 200, cause: errNotObject},
			wantCode:    "500",
			wantMessage: errors.MessageInvalidPayload,
		},
		{
			name:        "other success failure",
			err:         &bodyError{status: 200, cause: fmt.Errorf("stream reset")},
			wantCode:    "500",
			wantMessage: errors.MessageUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_PassesRequestErrorThrough(t *testing.T) {
	original := errors.NewRequestError("418", "ETEAPOT", nil).WithClient("SubmitterClientError")

	assert.Same(t, original, Classify(original))
	assert.Same(t, original, Classify(fmt.Errorf("wrapped: %w", original)))
	assert.Nil(t, Classify(nil))
}
