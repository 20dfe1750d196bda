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

package httpclient

import (
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// GET requests carry the encrypted identity in "payload".
var defaultRedactParams = []string{"payload", "token", "secret", "key", "password", "auth", "credential"}

// redactor masks query parameters whose lowercased name contains any of
// its fragments.
type redactor struct {
	fragments []string
}

func newRedactor(extra []string) *redactor {
	r := &redactor{fragments: append([]string(nil), defaultRedactParams...)}
	for _, p := range extra {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			r.fragments = append(r.fragments, p)
		}
	}
	return r
}

func (r *redactor) sensitive(name string) bool {
	name = strings.ToLower(name)
	for _, f := range r.fragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

func (r *redactor) url(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.String()
	}
	q := u.Query()
	for name := range q {
		if r.sensitive(name) {
			q.Set(name, redacted)
		}
	}
	masked := *u
	masked.RawQuery = q.Encode()
	return masked.String()
}

// SanitizeURL masks credential and payload query parameters in raw.
// When raw does not parse, the whole query is dropped.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		base, _, _ := strings.Cut(raw, "?")
		return base
	}
	return newRedactor(nil).url(u)
}
