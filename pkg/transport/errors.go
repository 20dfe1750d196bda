package transport

import (
	"encoding/json"
	"fmt"
)

// ErrorType groups transport failures by cause.
type ErrorType string

const (
	ErrorTypeConnection ErrorType = "connection" // refused, reset, DNS
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeAuth       ErrorType = "auth" // 401, 403
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypeClient     ErrorType = "client"
	ErrorTypeInvalidReq ErrorType = "invalid_request" // rejected before sending
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeParse      ErrorType = "parse" // body arrived but did not decode
)

// NameHTTPError names failures caused by a non-2xx response.
const NameHTTPError = "HTTPError"

// TransportError is the only error type the strategies return. The request
// executor reads StatusCode, Name, Code and Body to classify it.
type TransportError struct {
	Type ErrorType

	// StatusCode is zero when no response was received.
	StatusCode    int
	StatusMessage string

	// Name is NameHTTPError for status failures.
	Name string

	// Code is the errno-style code: ENOTFOUND, ECONNREFUSED, ETIMEDOUT, ...
	Code string

	// Message is safe to log. Cause may not be.
	Message string

	Body []byte

	// Response is set when a reply accompanied a failure that has no status
	// of its own, such as an upstream body relayed by a proxy.
	Response *Response

	RequestID string
	Retryable bool
	Cause     error

	// Metadata holds response headers of interest, e.g. MetadataRetryAfter.
	Metadata map[string]interface{}
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Type, e.StatusCode, e.Message)
	case e.Code != "":
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

func (e *TransportError) IsRetryable() bool {
	return e.Retryable
}

func (e *TransportError) ErrorType() string {
	return string(e.Type)
}

// IsStatusCode reports whether the failure carried status code.
func (e *TransportError) IsStatusCode(code int) bool {
	return e.StatusCode == code
}

func (e *TransportError) IsType(t ErrorType) bool {
	return e.Type == t
}

// ErrorObject decodes Body as a JSON object. It returns nil when there is no
// body or the body is not an object.
func (e *TransportError) ErrorObject() map[string]any {
	return decodeObject(e.Body)
}

// ResponseObject decodes the body of the attached Response as a JSON object.
func (e *TransportError) ResponseObject() map[string]any {
	if e.Response == nil {
		return nil
	}
	return decodeObject(e.Response.Body)
}

func decodeObject(body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}
	return obj
}
