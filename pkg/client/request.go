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
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/tombee/formclient/internal/tracing"
	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/token"
	"github.com/tombee/formclient/pkg/transport"
)

// Request describes one service call.
type Request struct {
	// URL is the endpoint template, e.g. "/service/:serviceSlug/user/:userId"
	URL string

	// Context supplies the template values
	Context map[string]string

	// Payload is the JSON body (POST) or the base64 query payload (GET)
	Payload any

	// Subject becomes the sub claim of the access token when set
	Subject string

	// Headers are extra request headers
	Headers map[string]string
}

// payloadParam is the query parameter carrying a GET payload. An empty
// object is never sent as a query, though the token still covers it.
const payloadParam = "payload"

var emptyObject = []byte("{}")

// encodeJSON serializes v without HTML escaping and without the trailing
// newline. A nil value serializes as {}.
func encodeJSON(v any) ([]byte, error) {
	if v == nil {
		return emptyObject, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// compose builds the wire request for one attempt. The token is signed over
// the exact bytes sent.
func (c *Client) compose(ctx context.Context, method string, req Request) (*transport.Request, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return nil, c.internalError(errors.MessageInvalidMethod, nil)
	}

	target, err := c.EndpointURL(req.URL, req.Context)
	if err != nil {
		return nil, err
	}

	body, err := encodeJSON(req.Payload)
	if err != nil {
		return nil, c.internalError(errors.MessageInvalidPayload, err)
	}

	accessToken, err := c.tokens.Generate(body, req.Subject)
	if err != nil {
		return nil, c.tag(errors.NewRequestError(errors.CodeInvalidPrivateKey, "", nil).WithCause(err))
	}

	headers := make(map[string]string, len(req.Headers)+3)
	for k, v := range req.Headers {
		headers[k] = v
	}
	if accessToken != "" {
		headers[token.Header] = accessToken
	}
	tracing.InjectIntoHeaders(ctx, headers)
	tracing.InjectTraceContext(ctx, headers)

	out := &transport.Request{
		Method:  method,
		URL:     target,
		Headers: headers,
	}

	switch method {
	case http.MethodGet:
		if !bytes.Equal(body, emptyObject) {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			out.URL = target + sep + payloadParam + "=" + url.QueryEscape(base64.StdEncoding.EncodeToString(body))
		}
	case http.MethodPost:
		out.Body = body
		headers["Content-Type"] = "application/json"
	}

	return out, nil
}
