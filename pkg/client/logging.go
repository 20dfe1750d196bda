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
	"fmt"
	"net/http"
	"strings"

	"github.com/tombee/formclient/internal/log"
	"github.com/tombee/formclient/internal/tracing"
	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/metrics"
	"github.com/tombee/formclient/pkg/transport"
)

// maxLoggedBody caps the response body quoted in a log line.
const maxLoggedBody = 1024

// failure is what a log line reports about one failed attempt.
type failure struct {
	name          string
	code          string
	status        int
	statusMessage string
	body          []byte
}

// describeFailure extracts the reportable details of err.
func describeFailure(err error) failure {
	var (
		f    failure
		berr *bodyError
		terr *transport.TransportError
	)

	switch {
	case errors.As(err, &berr):
		f.name = "RequestError"
		if isParseError(berr.cause) {
			f.name = "ParseError"
		}
		f.status = berr.status
		f.statusMessage = berr.statusMessage
		f.body = berr.body
	case errors.As(err, &terr):
		f.name = terr.Name
		if f.name == "" {
			switch terr.Type {
			case transport.ErrorTypeTimeout:
				f.name = "TimeoutError"
			case transport.ErrorTypeCancelled:
				f.name = "CancelError"
			default:
				f.name = "RequestError"
			}
		}
		f.code = terr.Code
		f.status = terr.StatusCode
		f.statusMessage = terr.StatusMessage
		f.body = terr.Body
	default:
		f.name = "RequestError"
		if rerr, ok := errors.AsRequestError(err); ok {
			f.code = rerr.Code
		} else {
			f.code = transport.ErrnoCode(err)
		}
	}

	if f.status > 0 && f.statusMessage == "" {
		f.statusMessage = http.StatusText(f.status)
	}
	return f
}

// logFailure writes one failure record. kind is "client" for a failed
// attempt and "API" for the terminal failure of a call.
func (c *Client) logFailure(logger Logger, kind string, labels metrics.Labels, f failure, retries int, correlationID tracing.CorrelationID) {
	if logger == nil {
		return
	}

	body := string(f.body)
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody] + "..."
	}

	msg := fmt.Sprintf("JWT %s request error: %s: %s %s%s - %s - %s - %d - %s - %s",
		kind,
		c.name,
		labels[metrics.LabelMethod],
		labels[metrics.LabelBaseURL],
		labels[metrics.LabelURL],
		f.name,
		f.code,
		f.status,
		f.statusMessage,
		body,
	)

	logger.Error(msg,
		metrics.LabelClientName, labels[metrics.LabelClientName],
		metrics.LabelBaseURL, labels[metrics.LabelBaseURL],
		metrics.LabelURL, labels[metrics.LabelURL],
		metrics.LabelMethod, labels[metrics.LabelMethod],
		log.NameKey, "jwt_"+strings.ToLower(kind)+"_request_error",
		log.RetryCountKey, retries,
		log.CorrelationIDKey, correlationID.String(),
	)
}
