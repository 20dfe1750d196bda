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

	"github.com/tombee/formclient/pkg/client"
)

var submitterEndpoints = struct {
	submit    string
	getStatus string
}{
	submit:    "/submission",
	getStatus: "/submission/:submissionId",
}

// SubmitterClient hands completed submissions to the submitter service.
type SubmitterClient struct {
	*client.Client
}

// NewSubmitterClient creates a submitter client for identity.ServiceURL.
func NewSubmitterClient(identity client.Identity, opts ...client.Option) (*SubmitterClient, error) {
	c, err := newBase(SubmitterClientName, identity, opts)
	if err != nil {
		return nil, err
	}
	return &SubmitterClient{Client: c}, nil
}

// Submit posts submission with the service slug and the encrypted user
// identity. Fields in submission override the generated ones.
func (c *SubmitterClient) Submit(ctx context.Context, submission map[string]any, userID, userToken string, logger client.Logger) error {
	encrypted, err := c.EncryptUserIDAndToken(userID, userToken)
	if err != nil {
		return err
	}

	payload := make(map[string]any, len(submission)+2)
	payload[fieldServiceSlug] = c.ServiceSlug()
	payload[fieldEncryptedUserIDAndToken] = encrypted
	for k, v := range submission {
		payload[k] = v
	}

	_, err = c.SendPost(ctx, client.Request{
		URL:     submitterEndpoints.submit,
		Payload: payload,
		Subject: userID,
	}, logger)
	return err
}

// GetStatus returns the submitter's record of submissionID.
func (c *SubmitterClient) GetStatus(ctx context.Context, submissionID string, logger client.Logger) (map[string]any, error) {
	return c.SendGet(ctx, client.Request{
		URL:     submitterEndpoints.getStatus,
		Context: map[string]string{"submissionId": submissionID},
	}, logger)
}
