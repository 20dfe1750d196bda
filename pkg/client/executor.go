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
	"encoding/json"
	"net/http"
	"time"

	"github.com/tombee/formclient/internal/tracing"
	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/metrics"
	"github.com/tombee/formclient/pkg/transport"
)

// SendGet calls the endpoint with GET. A non-nil payload travels as the
// base64 JSON "payload" query parameter. logger overrides the client logger
// for this call.
func (c *Client) SendGet(ctx context.Context, req Request, logger Logger) (map[string]any, error) {
	return c.send(ctx, http.MethodGet, req, logger)
}

// SendPost calls the endpoint with POST. The payload is the JSON body.
func (c *Client) SendPost(ctx context.Context, req Request, logger Logger) (map[string]any, error) {
	return c.send(ctx, http.MethodPost, req, logger)
}

// callResult is the outcome of the attempt loop.
type callResult struct {
	body          map[string]any
	status        int
	statusMessage string
	retries       int
	err           error
	failure       failure
}

func (c *Client) send(ctx context.Context, method string, req Request, logger Logger) (map[string]any, error) {
	if logger == nil {
		logger = c.logger
	}

	ctx, correlationID := tracing.Ensure(ctx)
	labels := c.baseLabels(method, req.URL)

	endCall := c.instruments.Load().api.StartTimer(labels)
	ctx, span := c.tracer.StartRequest(ctx, c.name, method, c.identity.ServiceURL, req.URL)

	res := c.attempt(ctx, method, req, logger, labels, correlationID)
	if res.err == nil {
		endCall(resultLabels(res.status, res.statusMessage, nil, metrics.OutcomeSuccess))
		tracing.End(span, res.status, "", nil)
		return res.body, nil
	}

	rerr := c.terminalError(res)
	endCall(resultLabels(res.failure.status, res.failure.statusMessage, rerr, metrics.OutcomeError))
	tracing.End(span, res.failure.status, rerr.Code, rerr)
	c.logFailure(logger, "API", labels, res.failure, res.retries, correlationID)
	return nil, rerr
}

// attempt runs the attempt loop. Each attempt composes a fresh request so the
// token always matches the bytes sent.
func (c *Client) attempt(ctx context.Context, method string, req Request, logger Logger, labels metrics.Labels, correlationID tracing.CorrelationID) callResult {
	var res callResult

	for attempt := 1; ; attempt++ {
		res.retries = attempt - 1

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				res.err = err
				res.failure = describeFailure(err)
				return res
			}
		}

		wireReq, err := c.compose(ctx, method, req)
		if err != nil {
			res.err = err
			res.failure = describeFailure(err)
			return res
		}

		end := c.instruments.Load().request.StartTimer(labels)
		attemptCtx, span := c.tracer.StartAttempt(ctx, attempt)
		attemptCtx, cancel := context.WithTimeout(attemptCtx, c.timeout)
		resp, err := c.transport.Execute(attemptCtx, wireReq)
		cancel()

		if err == nil {
			body, decodeErr := decodeBody(resp)
			if decodeErr == nil {
				end(resultLabels(resp.StatusCode, resp.StatusMessage, nil, metrics.OutcomeSuccess))
				tracing.End(span, resp.StatusCode, "", nil)
				res.body = body
				res.status = resp.StatusCode
				res.statusMessage = resp.StatusMessage
				return res
			}
			err = decodeErr
		}

		f := describeFailure(err)
		rerr := Classify(err)

		retry, retryAfter := c.retry.shouldRetry(err)
		retry = retry && attempt <= c.retry.MaxRetries && ctx.Err() == nil

		outcome := metrics.OutcomeError
		if retry {
			outcome = metrics.OutcomeRetry
		}
		end(resultLabels(f.status, f.statusMessage, rerr, outcome))
		tracing.End(span, f.status, rerr.Code, err)
		c.logFailure(logger, "client", labels, f, attempt-1, correlationID)

		res.err = err
		res.failure = f
		if !retry {
			return res
		}

		timer := time.NewTimer(calculateBackoff(c.retry, attempt, retryAfter))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			res.err = ctx.Err()
			res.failure = describeFailure(res.err)
			return res
		}
	}
}

// terminalError tags the classified failure and records the retry count. A
// RequestError raised before sending passes through unchanged.
func (c *Client) terminalError(res callResult) *errors.RequestError {
	if rerr, ok := errors.AsRequestError(res.err); ok {
		return rerr
	}

	rerr := Classify(res.err).WithClient(c.ErrorIdentity())
	data := map[string]any{"retry_count": res.retries}
	if res.failure.status > 0 {
		data["status_code"] = res.failure.status
	}
	rerr.Data = data
	return rerr
}

// decodeBody parses a 2xx body as a JSON object. An empty body yields an empty map.
func decodeBody(resp *transport.Response) (map[string]any, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	err := json.Unmarshal(resp.Body, &v)
	if err == nil {
		switch obj := v.(type) {
		case map[string]any:
			return obj, nil
		case nil:
			return map[string]any{}, nil
		default:
			err = errNotObject
		}
	}
	return nil, &bodyError{
		status:        resp.StatusCode,
		statusMessage: resp.StatusMessage,
		body:          resp.Body,
		cause:         err,
	}
}
