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
	"net/http"

	"github.com/tombee/formclient/pkg/client"
	"github.com/tombee/formclient/pkg/errors"
)

const userDataPath = "/service/:serviceSlug/user/:userId"

// UserDataStoreClient reads and writes a user's encrypted form data. The
// user token is the encryption key, so the datastore never sees cleartext.
type UserDataStoreClient struct {
	*client.Client
}

// NewUserDataStoreClient creates a datastore client for identity.ServiceURL.
func NewUserDataStoreClient(identity client.Identity, opts ...client.Option) (*UserDataStoreClient, error) {
	c, err := newBase(UserDataStoreClientName, identity, opts)
	if err != nil {
		return nil, err
	}
	return &UserDataStoreClient{Client: c}, nil
}

func (c *UserDataStoreClient) userContext(userID string) map[string]string {
	return map[string]string{"serviceSlug": c.ServiceSlug(), "userId": userID}
}

// GetData fetches the stored blob for userID and decrypts it into out.
func (c *UserDataStoreClient) GetData(ctx context.Context, userID, userToken string, out any, logger client.Logger) error {
	body, err := c.SendGet(ctx, client.Request{
		URL:     userDataPath,
		Context: c.userContext(userID),
	}, logger)
	if err != nil {
		return err
	}

	blob, ok := body[fieldPayload].(string)
	if !ok {
		return c.RequestError(errors.StatusCode(http.StatusInternalServerError), errors.MessageInvalidPayload, map[string]any{"body": body})
	}
	return c.Decrypt(userToken, blob, out)
}

// SetData encrypts payload under userToken and stores it for userID.
func (c *UserDataStoreClient) SetData(ctx context.Context, userID, userToken string, payload any, logger client.Logger) error {
	encrypted, err := c.Encrypt(userToken, payload)
	if err != nil {
		return err
	}

	_, err = c.SendPost(ctx, client.Request{
		URL:     userDataPath,
		Context: c.userContext(userID),
		Payload: map[string]any{fieldPayload: encrypted},
		Subject: userID,
	}, logger)
	return err
}
