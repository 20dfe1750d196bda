package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// OfflineConfig configures the offline transport.
type OfflineConfig struct {
	// Store overrides the store built from the fields below. Optional.
	Store Store

	// StoreType is "memory" (default) or "bbolt"
	StoreType string

	// Path is the bbolt database file
	Path string

	// TTL bounds how long recorded bodies stay readable
	TTL time.Duration
}

// TransportType returns "offline".
func (c *OfflineConfig) TransportType() string {
	return "offline"
}

// Validate checks if the configuration is valid.
func (c *OfflineConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("ttl must be non-negative, got %v", c.TTL)
	}
	if strings.EqualFold(c.StoreType, "bbolt") && c.Store == nil && c.Path == "" {
		return fmt.Errorf("bbolt store requires a path")
	}
	return nil
}

// Offline implements Transport without a network. POST requests record their
// body under the request path and under path/<fingerprint>; GET requests read
// back whatever was recorded for the path.
type Offline struct {
	store Store

	// Now returns the current time. Tests override it.
	Now func() time.Time
}

// NewOffline creates an offline transport over store. A nil store uses an
// in-memory store.
func NewOffline(store Store) *Offline {
	if store == nil {
		store = NewMemoryStore(StoreOptions{})
	}
	return &Offline{store: store, Now: time.Now}
}

// newOfflineFromConfig builds an offline transport from configuration.
func newOfflineFromConfig(config *OfflineConfig) (*Offline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	store := config.Store
	if store == nil {
		var err error
		store, err = NewStore(config.StoreType, config.Path, StoreOptions{TTL: config.TTL})
		if err != nil {
			return nil, err
		}
	}
	return NewOffline(store), nil
}

// Name returns "offline".
func (t *Offline) Name() string {
	return "offline"
}

// Close closes the underlying store.
func (t *Offline) Close() error {
	return t.store.Close()
}

// offlineReceipt is the reply to a recorded POST.
type offlineReceipt struct {
	Fingerprint string `json:"fingerprint"`
	Date        int64  `json:"date"`
	Timestamp   string `json:"timestamp"`
}

// Execute records or replays a request.
func (t *Offline) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, classifyRequestError(err)
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeInvalidReq,
			Message: fmt.Sprintf("invalid URL: %v", err),
			Cause:   err,
		}
	}
	key := strings.TrimSuffix(u.Path, "/")

	if req.Method == http.MethodPost {
		return t.record(key, req.Body)
	}
	return t.replay(key)
}

func (t *Offline) record(key string, body []byte) (*Response, error) {
	now := t.Now()
	fingerprint := strconv.FormatInt(now.UnixMilli(), 10)

	if body == nil {
		body = []byte("{}")
	}
	for _, k := range []string{key, key + "/" + fingerprint} {
		if err := t.store.Put(k, body); err != nil {
			return nil, &TransportError{
				Type:    ErrorTypeConnection,
				Message: "offline store write failed",
				Cause:   err,
			}
		}
	}

	reply, err := json.Marshal(offlineReceipt{
		Fingerprint: fingerprint,
		Date:        now.UnixMilli(),
		Timestamp:   now.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return nil, &TransportError{Type: ErrorTypeParse, Message: "encode receipt", Cause: err}
	}
	return offlineResponse(http.StatusOK, reply), nil
}

func (t *Offline) replay(key string) (*Response, error) {
	body, ok, err := t.store.Get(key)
	if err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeConnection,
			Message: "offline store read failed",
			Cause:   err,
		}
	}
	if !ok {
		return nil, classifyStatusError(offlineResponse(http.StatusNotFound, nil))
	}
	return offlineResponse(http.StatusOK, body), nil
}

func offlineResponse(status int, body []byte) *Response {
	return &Response{
		StatusCode:    status,
		StatusMessage: http.StatusText(status),
		Headers:       map[string][]string{"Content-Type": {"application/json"}},
		Body:          body,
		Metadata:      map[string]interface{}{},
	}
}
