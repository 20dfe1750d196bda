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

package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"

	"github.com/tombee/formclient/pkg/client"
	"github.com/tombee/formclient/pkg/errors"
)

// Upload policy defaults.
const (
	DefaultMaxSize = 10 * 1024 * 1024
	DefaultExpires = 28
)

var fileStoreEndpoints = struct {
	fetch string
	store string
}{
	fetch: "/service/:serviceSlug/user/:userId/:fingerprint",
	store: "/service/:serviceSlug/user/:userId",
}

// Policy constrains a stored file. Zero MaxSize and Expires take the
// client's defaults.
type Policy struct {
	// MaxSize is the maximum file size in bytes
	MaxSize int64 `json:"max_size"`

	// Expires is the retention in days
	Expires int `json:"expires"`

	// AllowedTypes lists accepted mime types. Empty allows any.
	AllowedTypes []string `json:"allowed_types,omitempty"`
}

// FetchArgs identifies a stored file.
type FetchArgs struct {
	UserID      string
	UserToken   string
	Fingerprint string
}

// StoreArgs describes a file to store.
type StoreArgs struct {
	UserID    string
	UserToken string
	File      []byte
	Policy    Policy
}

// StoreResult is the filestore's receipt.
type StoreResult struct {
	// Fingerprint identifies the stored file in later fetches
	Fingerprint string

	// Body is the full response
	Body map[string]any
}

// UserFileStoreClient uploads and downloads user files.
type UserFileStoreClient struct {
	*client.Client

	// MaxSize and Expires fill policy fields a caller leaves unset
	MaxSize int64
	Expires int
}

// NewUserFileStoreClient creates a filestore client for identity.ServiceURL.
func NewUserFileStoreClient(identity client.Identity, opts ...client.Option) (*UserFileStoreClient, error) {
	c, err := newBase(UserFileStoreClientName, identity, opts)
	if err != nil {
		return nil, err
	}
	return &UserFileStoreClient{
		Client:  c,
		MaxSize: DefaultMaxSize,
		Expires: DefaultExpires,
	}, nil
}

// FetchURL returns the absolute download URL of a stored file.
func (c *UserFileStoreClient) FetchURL(userID, fingerprint string) (string, error) {
	return c.EndpointURL(fileStoreEndpoints.fetch, map[string]string{
		"serviceSlug": c.ServiceSlug(),
		"userId":      userID,
		"fingerprint": fingerprint,
	})
}

// Fetch downloads a stored file.
func (c *UserFileStoreClient) Fetch(ctx context.Context, args FetchArgs, logger client.Logger) ([]byte, error) {
	encrypted, err := c.EncryptUserIDAndToken(args.UserID, args.UserToken)
	if err != nil {
		return nil, err
	}

	body, err := c.SendGet(ctx, client.Request{
		URL: fileStoreEndpoints.fetch,
		Context: map[string]string{
			"serviceSlug": c.ServiceSlug(),
			"userId":      args.UserID,
			"fingerprint": args.Fingerprint,
		},
		Payload: map[string]any{fieldEncryptedUserIDAndToken: encrypted},
		Subject: args.UserID,
	}, logger)
	if err != nil {
		return nil, err
	}

	file, ok := body[fieldFile].(string)
	if !ok {
		return nil, c.RequestError(errors.StatusCode(http.StatusInternalServerError), errors.MessageInvalidPayload, map[string]any{"body": body})
	}
	data, err := base64.StdEncoding.DecodeString(file)
	if err != nil {
		return nil, c.RequestError(errors.StatusCode(http.StatusInternalServerError), errors.MessageInvalidPayload, nil)
	}
	return data, nil
}

// Store uploads args.File and returns the receipt. A response without a
// fingerprint is an ENOFINGERPRINT error.
func (c *UserFileStoreClient) Store(ctx context.Context, args StoreArgs, logger client.Logger) (*StoreResult, error) {
	encrypted, err := c.EncryptUserIDAndToken(args.UserID, args.UserToken)
	if err != nil {
		return nil, err
	}

	policy := args.Policy
	if policy.MaxSize == 0 {
		policy.MaxSize = c.MaxSize
	}
	if policy.Expires == 0 {
		policy.Expires = c.Expires
	}
	if len(policy.AllowedTypes) == 0 {
		policy.AllowedTypes = nil
	}

	body, err := c.SendPost(ctx, client.Request{
		URL: fileStoreEndpoints.store,
		Context: map[string]string{
			"serviceSlug": c.ServiceSlug(),
			"userId":      args.UserID,
		},
		Payload: map[string]any{
			fieldEncryptedUserIDAndToken: encrypted,
			fieldFile:                    base64.StdEncoding.EncodeToString(args.File),
			fieldPolicy:                  policy,
		},
		Subject: args.UserID,
	}, logger)
	if err != nil {
		return nil, err
	}

	fingerprint := fingerprintOf(body[fieldFingerprint])
	if fingerprint == "" {
		return nil, c.RequestError(errors.StatusCode(http.StatusInternalServerError), errors.MessageNoFingerprint, nil)
	}
	return &StoreResult{Fingerprint: fingerprint, Body: body}, nil
}

// StoreFromPath reads the file at path and stores it.
func (c *UserFileStoreClient) StoreFromPath(ctx context.Context, path string, args StoreArgs, logger client.Logger) (*StoreResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	args.File = data
	return c.Store(ctx, args, logger)
}

// fingerprintOf accepts the string or numeric fingerprints services return.
func fingerprintOf(v any) string {
	switch f := v.(type) {
	case string:
		return f
	case float64:
		if f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return ""
	}
}
