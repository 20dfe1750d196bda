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
	"strings"

	"github.com/tombee/formclient/pkg/client"
	"github.com/tombee/formclient/pkg/transport"
)

// Placeholder identity of offline clients. The secret is a valid 32-byte
// AES-256 key so user identities still encrypt.
const (
	OfflineServiceSecret = "SERVICE_SECRET__SERVICE_SECRET__"
	OfflineServiceSlug   = "SERVICE_SLUG"
	OfflineServiceURL    = "SUBMITTER_URL"
)

// OfflineIdentity returns the placeholder identity used by Offline.
func OfflineIdentity() client.Identity {
	return client.Identity{
		ServiceSecret: OfflineServiceSecret,
		ServiceSlug:   OfflineServiceSlug,
		ServiceURL:    OfflineServiceURL,
	}
}

// Offline builds every client over one shared in-memory offline transport.
// Posts are recorded and answered with a receipt; gets replay what was
// posted to the same path. Each service gets its own placeholder base URL
// (SUBMITTER_URL, USER_DATASTORE_URL, ...) so recordings never collide.
func Offline(opts ...client.Option) (*Set, error) {
	t := transport.NewOffline(nil)

	all := make([]client.Option, 0, len(opts)+1)
	all = append(all, client.WithTransport(t))
	all = append(all, opts...)

	urls := map[string]string{}
	for _, name := range serviceNames {
		urls[name] = placeholderURL(name)
	}

	s, err := buildSet(OfflineIdentity(), urls, all)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	s.Transport = t
	s.closers = append(s.closers, t.Close)
	return s, nil
}

// placeholderURL names the base URL of a service that is never dialled.
func placeholderURL(service string) string {
	return strings.ToUpper(service) + "_URL"
}
