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

// Package services provides the typed clients for the platform's email, SMS,
// submitter, user datastore and user filestore services.
//
// Every client wraps a *client.Client, so all of them sign requests the same
// way and report failures as *errors.RequestError tagged with their own error
// identity (for example "UserDataStoreClientError").
package services

import (
	"context"

	"github.com/tombee/formclient/pkg/client"
)

// Client names. Each becomes the error identity name+"Error".
const (
	EmailClientName         = "EmailClient"
	SMSClientName           = "SMSClient"
	SubmitterClientName     = "SubmitterClient"
	UserDataStoreClientName = "UserDataStoreClient"
	UserFileStoreClientName = "UserFileStoreClient"
)

// Payload field names shared by several services.
const (
	fieldServiceSlug             = "service_slug"
	fieldEncryptedUserIDAndToken = "encrypted_user_id_and_token"
	fieldPayload                 = "payload"
	fieldMessage                 = "message"
	fieldFile                    = "file"
	fieldPolicy                  = "policy"
	fieldFingerprint             = "fingerprint"
)

// newBase builds the shared client with name applied before the caller's
// options, so an explicit WithName still wins.
func newBase(name string, identity client.Identity, opts []client.Option) (*client.Client, error) {
	all := make([]client.Option, 0, len(opts)+1)
	all = append(all, client.WithName(name))
	all = append(all, opts...)
	return client.New(identity, all...)
}

// messenger posts a message envelope to a single endpoint.
type messenger struct {
	*client.Client
	path string
}

// SendMessage posts {message, service_slug} to the service. headers are sent
// as extra request headers.
func (m *messenger) SendMessage(ctx context.Context, message any, headers map[string]string, logger client.Logger) (map[string]any, error) {
	return m.SendPost(ctx, client.Request{
		URL: m.path,
		Payload: map[string]any{
			fieldMessage:     message,
			fieldServiceSlug: m.ServiceSlug(),
		},
		Headers: headers,
	}, logger)
}
