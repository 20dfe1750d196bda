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

// Package token generates the per-request access tokens that bind a checksum
// of the outgoing payload to the calling service.
package token

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Header carries the access token on outbound requests.
const Header = "x-access-token-v2"

// ErrChecksumMismatch is returned by Verify when the token does not match the body.
var ErrChecksumMismatch = errors.New("checksum does not match payload")

// Claims are the claims carried by an access token.
type Claims struct {
	// Checksum is the lowercase hex SHA-256 of the serialized payload.
	Checksum string `json:"checksum"`
	jwt.RegisteredClaims
}

// Generator signs access tokens for one issuer.
type Generator struct {
	// Issuer is the service slug of the caller.
	Issuer string

	// Key signs tokens with RS256. A nil key disables signing.
	Key *rsa.PrivateKey

	// TTL sets an expiry on each token. Zero issues tokens without exp.
	TTL time.Duration

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Checksum returns the lowercase hex SHA-256 of body.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Generate returns a signed token for body. It returns "" with no error when
// the generator has no key; the request then goes out unsigned and the remote
// side is expected to reject it.
func (g *Generator) Generate(body []byte, subject string) (string, error) {
	if g == nil || g.Key == nil {
		return "", nil
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	issued := now()

	claims := Claims{
		Checksum: Checksum(body),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   g.Issuer,
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}
	if g.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issued.Add(g.TTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(g.Key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParsePrivateKey decodes a base64-encoded PEM RSA private key (PKCS#1 or PKCS#8).
func ParsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("private key is not valid base64: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// Verify parses tokenString with the public key and checks that it was issued
// for body. It returns the claims on success.
func Verify(tokenString string, key *rsa.PublicKey, body []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Checksum != Checksum(body) {
		return nil, ErrChecksumMismatch
	}
	return claims, nil
}
