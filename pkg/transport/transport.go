// Package transport holds the single-attempt strategies the service clients
// send requests through: net/http, resty, and an offline recorder backed by
// a memory or bbolt store.
//
// Signing, retries, metrics and error classification belong to pkg/client.
// A strategy performs exactly one attempt per Execute call and reports every
// failure, non-2xx responses included, as a *TransportError.
package transport

import (
	"context"

	"golang.org/x/time/rate"
)

// Transport executes one request attempt.
type Transport interface {
	// Execute honours ctx for cancellation and the per-attempt deadline.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Name is the registry key: "http", "resty" or "offline".
	Name() string
}

// Request is a fully composed attempt. URL already carries the GET payload
// query and Headers the access token.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte // nil for GET
}

// Response is a 2xx reply.
type Response struct {
	StatusCode    int
	StatusMessage string
	Headers       map[string][]string
	Body          []byte

	// Metadata holds values lifted from headers, keyed by the Metadata*
	// constants, plus duration_ms.
	Metadata map[string]interface{}
}

const (
	MetadataRequestID  = "request_id"
	MetadataRetryAfter = "retry_after"
)

// RateLimiter blocks until another attempt may start.
// *rate.Limiter satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// NewRateLimiter returns a token bucket allowing rps attempts per second.
// A non-positive rps disables limiting and returns nil.
func NewRateLimiter(rps float64, burst int) RateLimiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}
