package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyConfig configures the resty transport.
type RestyConfig struct {
	// Timeout bounds a single attempt (default: 30s)
	Timeout time.Duration

	// UserAgent is sent when the request does not set one
	UserAgent string
}

// TransportType returns "resty".
func (c *RestyConfig) TransportType() string {
	return "resty"
}

// Validate checks if the configuration is valid.
func (c *RestyConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}
	return nil
}

// Resty implements Transport over a resty client. Resty's own retry support
// is left disabled; the request executor owns retries.
type Resty struct {
	client *resty.Client
}

// NewResty creates a resty transport.
func NewResty(config *RestyConfig) (*Resty, error) {
	if config == nil {
		config = &RestyConfig{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := resty.New()
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	if config.UserAgent != "" {
		c.SetHeader("User-Agent", config.UserAgent)
	}

	return &Resty{client: c}, nil
}

// Name returns "resty".
func (t *Resty) Name() string {
	return "resty"
}

// Execute sends a single request through resty.
func (t *Resty) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	r := t.client.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		if _, ok := req.Headers["Content-Type"]; !ok {
			r.SetHeader("Content-Type", "application/json")
		}
		r.SetBody(req.Body)
	}

	restyResp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, classifyRequestError(err)
	}

	resp := &Response{
		StatusCode:    restyResp.StatusCode(),
		StatusMessage: reasonPhrase(restyResp.Status(), restyResp.StatusCode()),
		Headers:       restyResp.Header(),
		Body:          restyResp.Body(),
		Metadata:      responseMetadata(restyResp.Header()),
	}
	resp.Metadata["duration_ms"] = restyResp.Time().Milliseconds()

	if !isSuccess(resp.StatusCode) {
		return nil, classifyStatusError(resp)
	}

	return resp, nil
}
