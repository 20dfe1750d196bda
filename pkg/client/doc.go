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

// Package client implements the authenticated base client shared by every
// service client.
//
// A Client signs each request with an RS256 access token bound to a checksum
// of the payload, sends it through a transport with per-attempt timeout and
// bounded retry, reports per-attempt and per-call durations through metrics
// timers, and turns every failure into an *errors.RequestError.
//
// Basic usage:
//
//	c, err := client.New(client.Identity{
//		ServiceSecret:     secret,
//		ServiceSlug:       "my-form",
//		ServiceURL:        "https://datastore.example.com",
//		EncodedPrivateKey: key,
//	}, client.WithName("UserDataStoreClient"))
//	if err != nil {
//		return err
//	}
//	body, err := c.SendGet(ctx, client.Request{
//		URL:     "/service/:serviceSlug/user/:userId",
//		Context: map[string]string{"serviceSlug": "my-form", "userId": id},
//	}, logger)
package client
