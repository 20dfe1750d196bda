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
	"sync/atomic"
	"time"

	"github.com/tombee/formclient/internal/tracing"
	"github.com/tombee/formclient/pkg/aes256"
	"github.com/tombee/formclient/pkg/endpoint"
	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/metrics"
	"github.com/tombee/formclient/pkg/token"
	"github.com/tombee/formclient/pkg/transport"
)

// DefaultName is the client name used when WithName is not given.
const DefaultName = "Client"

// Identity is the immutable identity of a client.
type Identity struct {
	// ServiceSecret is the 32-byte key for user identity encryption
	ServiceSecret string

	// ServiceSlug identifies the calling service and is the token issuer
	ServiceSlug string

	// ServiceURL is the base address of the remote service
	ServiceURL string

	// EncodedPrivateKey is a base64 PEM RSA key. Empty sends unsigned requests.
	EncodedPrivateKey string
}

// UserIdentity is the cleartext form of an encrypted user id and token.
type UserIdentity struct {
	UserID    string `json:"userId"`
	UserToken string `json:"userToken"`
}

// Logger receives failure records. *slog.Logger satisfies it, as does the zap
// adapter in internal/log.
type Logger interface {
	Error(msg string, args ...any)
}

// instruments holds the timers swapped by SetMetricsInstrumentation.
type instruments struct {
	api     metrics.Timer
	request metrics.Timer
}

// Client is the authenticated base client. It is safe for concurrent use.
type Client struct {
	identity  Identity
	name      string
	tokens    *token.Generator
	transport transport.Transport
	timeout   time.Duration
	retry     *RetryConfig
	limiter   transport.RateLimiter
	logger    Logger
	tracer    *tracing.Tracer

	instruments atomic.Pointer[instruments]
}

// New validates identity and builds a client. Missing identity fields fail
// with ENOSERVICESECRET, ENOSERVICESLUG or ENOMICROSERVICEURL; a malformed
// private key fails with EINVALIDPRIVATEKEY.
func New(identity Identity, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		identity: identity,
		name:     o.name,
		timeout:  o.timeout,
		retry:    o.retry,
		limiter:  o.limiter,
		logger:   o.logger,
		tracer:   tracing.NewTracer(o.tracerProvider),
	}

	switch {
	case identity.ServiceSecret == "":
		return nil, c.RequestError(errors.CodeNoServiceSecret, "No service secret passed to client", nil)
	case identity.ServiceSlug == "":
		return nil, c.RequestError(errors.CodeNoServiceSlug, "No service slug passed to client", nil)
	case identity.ServiceURL == "":
		return nil, c.RequestError(errors.CodeNoMicroserviceURL, "No microservice url passed to client", nil)
	}

	if err := c.retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry configuration: %w", err)
	}
	if c.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0, got %v", c.timeout)
	}

	c.tokens = &token.Generator{Issuer: identity.ServiceSlug, TTL: o.tokenTTL}
	if identity.EncodedPrivateKey != "" {
		key, err := token.ParsePrivateKey(identity.EncodedPrivateKey)
		if err != nil {
			return nil, c.tag(errors.NewRequestError(errors.CodeInvalidPrivateKey, "", nil).WithCause(err))
		}
		c.tokens.Key = key
	}

	c.transport = o.transport
	if c.transport == nil {
		t, err := transport.NewHTTP(nil)
		if err != nil {
			return nil, err
		}
		c.transport = t
	}

	c.SetMetricsInstrumentation(o.apiMetrics, o.requestMetrics)
	return c, nil
}

// Name returns the client name used in metrics labels and log lines.
func (c *Client) Name() string {
	return c.name
}

// ErrorIdentity returns the tag carried by errors this client raises.
func (c *Client) ErrorIdentity() string {
	return c.name + "Error"
}

// ServiceSlug returns the slug of the calling service.
func (c *Client) ServiceSlug() string {
	return c.identity.ServiceSlug
}

// ServiceURL returns the base address of the remote service.
func (c *Client) ServiceURL() string {
	return c.identity.ServiceURL
}

// SetMetricsInstrumentation replaces the call and attempt timers. A nil timer
// restores the no-op. Attempts already started keep the timer they began with.
func (c *Client) SetMetricsInstrumentation(api, request metrics.Timer) {
	if api == nil {
		api = metrics.Noop{}
	}
	if request == nil {
		request = metrics.Noop{}
	}
	c.instruments.Store(&instruments{api: api, request: request})
}

// RequestError builds a RequestError tagged with this client's identity. The
// message defaults to the code.
func (c *Client) RequestError(code, message string, data map[string]any) error {
	return c.tag(errors.NewRequestError(code, message, data))
}

func (c *Client) tag(err *errors.RequestError) *errors.RequestError {
	return err.WithClient(c.ErrorIdentity())
}

// internalError builds a 500 RequestError with a symbolic message and cause.
func (c *Client) internalError(message string, cause error) *errors.RequestError {
	return c.tag(errors.NewRequestError(errors.StatusCode(http.StatusInternalServerError), message, nil).WithCause(cause))
}

// EndpointURL compiles template against ctx and prefixes the service URL.
func (c *Client) EndpointURL(template string, ctx map[string]string) (string, error) {
	u, err := endpoint.Compile(c.identity.ServiceURL, template, ctx)
	if err != nil {
		return "", c.internalError(errors.MessageInvalidURL, err)
	}
	return u, nil
}

// Encrypt serializes data to JSON and encrypts it under key with a random IV.
func (c *Client) Encrypt(key string, data any) (string, error) {
	blob, err := aes256.EncryptJSON(key, data)
	if err != nil {
		return "", c.internalError(errors.MessageInvalidPayload, err)
	}
	return blob, nil
}

// Decrypt decrypts blob under key and unmarshals the JSON into out.
func (c *Client) Decrypt(key, blob string, out any) error {
	if err := aes256.DecryptJSON(key, blob, out); err != nil {
		return c.internalError(errors.MessageInvalidPayload, err)
	}
	return nil
}

// EncryptUserIDAndToken encrypts the pair under the service secret. The IV is
// derived from the pair, so equal inputs give equal ciphertext, the empty
// pair included.
//
// The seed is userID+userToken, so pairs with the same concatenation
// ("ab","c" and "a","bc") share an IV and therefore a CTR keystream.
func (c *Client) EncryptUserIDAndToken(userID, userToken string) (string, error) {
	blob, err := aes256.EncryptJSONWithSeed(c.identity.ServiceSecret, UserIdentity{UserID: userID, UserToken: userToken}, userID+userToken)
	if err != nil {
		return "", c.internalError(errors.MessageInvalidPayload, err)
	}
	return blob, nil
}

// DecryptUserIDAndToken reverses EncryptUserIDAndToken.
func (c *Client) DecryptUserIDAndToken(blob string) (UserIdentity, error) {
	var id UserIdentity
	if err := c.Decrypt(c.identity.ServiceSecret, blob, &id); err != nil {
		return UserIdentity{}, err
	}
	return id, nil
}
