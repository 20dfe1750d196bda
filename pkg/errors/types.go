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

package errors

import (
	"fmt"
	"strconv"
)

// DefaultClient is the error identity used when a client has no name of its own.
const DefaultClient = "ClientError"

// RequestError is the single failure shape surfaced by the service clients.
//
// Code is either a remote HTTP status rendered in decimal ("404") or a short
// symbolic code ("ENOSERVICESECRET"). Client carries the error identity of the
// client that raised it (for example "UserDataStoreClientError") and never
// changes the shape of the error.
type RequestError struct {
	// Client is the error identity of the raising client
	Client string

	// Code is the status or symbolic code
	Code string

	// Message defaults to Code
	Message string

	// Data holds optional context (the failed response, retry counts)
	Data map[string]any

	// Cause is the underlying error, if any
	Cause error
}

// NewRequestError builds a RequestError with the message defaulting to the code.
func NewRequestError(code, message string, data map[string]any) *RequestError {
	if message == "" {
		message = code
	}
	return &RequestError{
		Client:  DefaultClient,
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// StatusCode renders an HTTP status as a RequestError code.
func StatusCode(status int) string {
	return strconv.Itoa(status)
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	client := e.Client
	if client == "" {
		client = DefaultClient
	}
	if e.Message == "" || e.Message == e.Code {
		return fmt.Sprintf("%s: %s", client, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", client, e.Message, e.Code)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is matches another RequestError on code and message. Empty fields in the
// target act as wildcards, and the client identity is ignored.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	if t.Message != "" && t.Message != e.Message {
		return false
	}
	return true
}

// HTTPStatus returns the numeric status carried in Code, or 0 when the code is symbolic.
func (e *RequestError) HTTPStatus() int {
	n, err := strconv.Atoi(e.Code)
	if err != nil {
		return 0
	}
	return n
}

// WithClient returns a copy tagged with the given error identity.
func (e *RequestError) WithClient(client string) *RequestError {
	cp := *e
	cp.Client = client
	return &cp
}

// WithCause returns a copy carrying the underlying cause.
func (e *RequestError) WithCause(cause error) *RequestError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// ErrorType implements ErrorClassifier.
func (e *RequestError) ErrorType() string {
	return "request"
}

// IsRetryable implements ErrorClassifier. A raised RequestError is final.
func (e *RequestError) IsRetryable() bool {
	return false
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "service_slug", "services.email")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
