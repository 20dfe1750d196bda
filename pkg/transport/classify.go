package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// classifyRequestError classifies errors from sending a request into
// TransportError types.
func classifyRequestError(err error) *TransportError {
	code := ErrnoCode(err)

	switch code {
	case CodeCanceled:
		return &TransportError{
			Type:      ErrorTypeCancelled,
			Code:      code,
			Message:   "request cancelled",
			Retryable: false,
			Cause:     err,
		}
	case CodeTimedOut:
		return &TransportError{
			Type:      ErrorTypeTimeout,
			Code:      code,
			Message:   "request timeout",
			Retryable: true,
			Cause:     err,
		}
	case "":
		return &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("HTTP error: %s", redactURLError(err)),
			Retryable: false,
			Cause:     err,
		}
	default:
		return &TransportError{
			Type:      ErrorTypeConnection,
			Code:      code,
			Message:   "connection error",
			Retryable: true,
			Cause:     err,
		}
	}
}

// classifyStatusError classifies a non-2xx response into a TransportError.
func classifyStatusError(resp *Response) *TransportError {
	var errorType ErrorType
	var retryable bool

	statusCode := resp.StatusCode
	switch {
	case statusCode == 401 || statusCode == 403:
		errorType = ErrorTypeAuth
	case statusCode == 429:
		errorType = ErrorTypeRateLimit
		retryable = true
	case statusCode >= 500:
		errorType = ErrorTypeServer
		retryable = true
	case statusCode == 408:
		errorType = ErrorTypeTimeout
		retryable = true
	default:
		errorType = ErrorTypeClient
	}

	statusMessage := resp.StatusMessage
	if statusMessage == "" {
		statusMessage = http.StatusText(statusCode)
	}

	message := fmt.Sprintf("HTTP %d", statusCode)
	if len(resp.Body) > 0 && len(resp.Body) < 500 {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, strings.TrimSpace(string(resp.Body)))
	}

	requestID, _ := resp.Metadata[MetadataRequestID].(string)

	return &TransportError{
		Type:          errorType,
		StatusCode:    statusCode,
		StatusMessage: statusMessage,
		Name:          NameHTTPError,
		Message:       message,
		Body:          resp.Body,
		RequestID:     requestID,
		Retryable:     retryable,
		Metadata:      resp.Metadata,
	}
}

// responseMetadata extracts the metadata transports attach to every response.
func responseMetadata(header http.Header) map[string]interface{} {
	metadata := make(map[string]interface{})
	if requestID := header.Get("X-Request-ID"); requestID != "" {
		metadata[MetadataRequestID] = requestID
	}
	if retryAfter := header.Get("Retry-After"); retryAfter != "" {
		metadata[MetadataRetryAfter] = retryAfter
	}
	return metadata
}

// isSuccess reports whether status is in the 2xx range.
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// reasonPhrase strips the numeric prefix from a status line such as "404 Not Found".
func reasonPhrase(status string, code int) string {
	if _, phrase, ok := strings.Cut(status, " "); ok && phrase != "" {
		return phrase
	}
	return http.StatusText(code)
}

// redactURLError drops the query from url.Error messages so GET payloads do
// not leak into error text.
func redactURLError(err error) string {
	if ue, ok := err.(*url.Error); ok {
		u := ue.URL
		if i := strings.IndexByte(u, '?'); i >= 0 {
			u = u[:i]
		}
		return fmt.Sprintf("%s %q: %v", ue.Op, u, ue.Err)
	}
	return err.Error()
}

var validMethods = map[string]bool{
	http.MethodGet:  true,
	http.MethodPost: true,
}

// validateRequest checks if the request is valid.
func validateRequest(req *Request) *TransportError {
	var reason string
	switch {
	case req == nil:
		reason = "request is nil"
	case req.Method == "":
		reason = "method is required"
	case !validMethods[req.Method]:
		reason = fmt.Sprintf("invalid HTTP method: %q", req.Method)
	case req.URL == "":
		reason = "URL is required"
	}
	if reason == "" {
		if _, err := url.Parse(req.URL); err != nil {
			reason = fmt.Sprintf("invalid URL: %v", err)
		}
	}
	if reason == "" {
		return nil
	}
	return &TransportError{
		Type:      ErrorTypeInvalidReq,
		Message:   fmt.Sprintf("invalid request: %s", reason),
		Retryable: false,
	}
}
