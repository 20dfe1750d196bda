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

import "github.com/tombee/formclient/pkg/client"

const smsPath = "/sms"

// SMSClient sends messages through the SMS service.
type SMSClient struct {
	messenger
}

// NewSMSClient creates an SMS client for identity.ServiceURL.
func NewSMSClient(identity client.Identity, opts ...client.Option) (*SMSClient, error) {
	c, err := newBase(SMSClientName, identity, opts)
	if err != nil {
		return nil, err
	}
	return &SMSClient{messenger{Client: c, path: smsPath}}, nil
}
