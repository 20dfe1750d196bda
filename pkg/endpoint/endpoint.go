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

// Package endpoint compiles URL templates with named placeholders into
// concrete request paths.
//
// A template such as "/service/:serviceSlug/user/:userId" names its
// parameters with a leading colon. A trailing "?" marks a parameter as
// optional; an absent optional parameter drops the segment together with its
// leading slash.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

// CompileError reports a template that could not be expanded.
type CompileError struct {
	// Template is the template being compiled
	Template string

	// Param names the missing parameter, if any
	Param string

	// Reason describes the failure
	Reason string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("compile %q: %s %q", e.Template, e.Reason, e.Param)
	}
	return fmt.Sprintf("compile %q: %s", e.Template, e.Reason)
}

type token struct {
	literal  string
	param    string
	optional bool
}

// Template is a parsed URL template. It is safe for concurrent use.
type Template struct {
	raw    string
	tokens []token
}

// Parse parses a URL template.
func Parse(template string) (*Template, error) {
	t := &Template{raw: template}

	var lit strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != ':' {
			lit.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(template) && isNameByte(template[j]) {
			j++
		}
		if j == i+1 {
			return nil, &CompileError{Template: template, Reason: fmt.Sprintf("empty parameter name at offset %d", i)}
		}

		if lit.Len() > 0 {
			t.tokens = append(t.tokens, token{literal: lit.String()})
			lit.Reset()
		}

		tok := token{param: template[i+1 : j]}
		if j < len(template) && template[j] == '?' {
			tok.optional = true
			j++
		}
		t.tokens = append(t.tokens, tok)
		i = j - 1
	}
	if lit.Len() > 0 {
		t.tokens = append(t.tokens, token{literal: lit.String()})
	}

	return t, nil
}

// MustParse is like Parse but panics on error. Use it for package-level
// endpoint tables.
func MustParse(template string) *Template {
	t, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the raw template.
func (t *Template) String() string {
	return t.raw
}

// Params returns the parameter names in template order.
func (t *Template) Params() []string {
	var names []string
	for _, tok := range t.tokens {
		if tok.param != "" {
			names = append(names, tok.param)
		}
	}
	return names
}

// Expand substitutes every parameter with its path-escaped value from ctx.
// Values are not validated beyond escaping.
func (t *Template) Expand(ctx map[string]string) (string, error) {
	var b strings.Builder
	for _, tok := range t.tokens {
		if tok.param == "" {
			b.WriteString(tok.literal)
			continue
		}

		value, ok := ctx[tok.param]
		if !ok || value == "" {
			if tok.optional {
				trimTrailingSlash(&b)
				continue
			}
			return "", &CompileError{Template: t.raw, Param: tok.param, Reason: "missing parameter"}
		}
		b.WriteString(url.PathEscape(value))
	}
	return b.String(), nil
}

// Compile parses template, expands it with ctx and prefixes base.
func Compile(base, template string, ctx map[string]string) (string, error) {
	t, err := Parse(template)
	if err != nil {
		return "", err
	}
	return t.Join(base, ctx)
}

// Join expands the template and prefixes base, ensuring a single slash
// between the two.
func (t *Template) Join(base string, ctx map[string]string) (string, error) {
	path, err := t.Expand(ctx)
	if err != nil {
		return "", err
	}
	if path == "" {
		return base, nil
	}
	if strings.HasPrefix(path, "/") {
		return strings.TrimSuffix(base, "/") + path, nil
	}
	return base + path, nil
}

func trimTrailingSlash(b *strings.Builder) {
	s := b.String()
	if strings.HasSuffix(s, "/") {
		b.Reset()
		b.WriteString(strings.TrimSuffix(s, "/"))
	}
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
