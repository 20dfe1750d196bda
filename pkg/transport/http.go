package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tombee/formclient/pkg/httpclient"
)

// HTTPConfig configures the net/http transport.
type HTTPConfig struct {
	// Client overrides the client built from HTTP. Optional.
	Client *http.Client

	// HTTP configures the client built by pkg/httpclient
	HTTP httpclient.Config
}

// TransportType returns "http".
func (c *HTTPConfig) TransportType() string {
	return "http"
}

// Validate checks if the configuration is valid.
func (c *HTTPConfig) Validate() error {
	if c.Client != nil {
		return nil
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("invalid http client configuration: %w", err)
	}
	return nil
}

// HTTP implements Transport over net/http.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates a new HTTP transport. A nil config uses httpclient defaults.
func NewHTTP(config *HTTPConfig) (*HTTP, error) {
	if config == nil {
		config = &HTTPConfig{HTTP: httpclient.DefaultConfig()}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := config.Client
	if client == nil {
		var err error
		client, err = httpclient.New(config.HTTP)
		if err != nil {
			return nil, err
		}
	}

	return &HTTP{client: client}, nil
}

// Name returns "http".
func (t *HTTP) Name() string {
	return "http"
}

// Execute sends a single HTTP request.
func (t *HTTP) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	httpReq, err := t.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("failed to build HTTP request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	start := time.Now()
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		terr := classifyRequestError(err)
		terr.Message = fmt.Sprintf("failed to read response body: %s", err.Error())
		return nil, terr
	}

	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		StatusMessage: reasonPhrase(httpResp.Status, httpResp.StatusCode),
		Headers:       httpResp.Header,
		Body:          body,
		Metadata:      responseMetadata(httpResp.Header),
	}
	resp.Metadata["duration_ms"] = time.Since(start).Milliseconds()

	if !isSuccess(httpResp.StatusCode) {
		return nil, classifyStatusError(resp)
	}

	return resp, nil
}

// buildHTTPRequest constructs an http.Request from a transport Request.
func (t *HTTP) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	return httpReq, nil
}
