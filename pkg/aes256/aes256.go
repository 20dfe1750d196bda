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

// Package aes256 encrypts payloads with AES-256 in CTR mode.
//
// Ciphertext is carried as base64(iv || ciphertext) using the standard
// encoding. The blob embeds neither the key nor the algorithm; the
// decrypting side must already know both.
package aes256

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required key length in bytes.
	KeySize = 32

	// IVSize is the CTR initialization vector length in bytes.
	IVSize = aes.BlockSize
)

// ivInfo binds derived IVs to this package so the seed cannot be reused for
// other derivations.
var ivInfo = []byte("formclient/aes256 iv")

var (
	// ErrInvalidCiphertext is returned when a blob cannot be decoded
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrInvalidKey is returned when the key is not exactly KeySize bytes
	ErrInvalidKey = errors.New("invalid encryption key")
)

// Encrypt encrypts plaintext under key with a fresh random IV.
func Encrypt(key string, plaintext []byte) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}
	return seal(key, plaintext, iv)
}

// EncryptWithSeed encrypts plaintext under key with the IV derived from
// seed, so equal (key, plaintext, seed) inputs always produce equal output.
// The empty seed is a seed like any other.
func EncryptWithSeed(key string, plaintext []byte, seed string) (string, error) {
	iv, err := DeriveIV(seed)
	if err != nil {
		return "", err
	}
	return seal(key, plaintext, iv)
}

func seal(key string, plaintext, iv []byte) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	out := make([]byte, IVSize+len(plaintext))
	copy(out, iv)
	cipher.NewCTR(block, iv).XORKeyStream(out[IVSize:], plaintext)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
//
// CTR mode is not authenticated: a tampered blob of valid length decrypts to
// garbage rather than failing here. Callers that decode the plaintext (see
// DecryptJSON) surface that as a parse failure.
func Decrypt(key, blob string) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(raw) < IVSize {
		return nil, fmt.Errorf("%w: ciphertext too short (expected at least %d bytes, got %d)",
			ErrInvalidCiphertext, IVSize, len(raw))
	}

	iv, data := raw[:IVSize], raw[IVSize:]
	plaintext := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, data)

	return plaintext, nil
}

// EncryptJSON serializes v to JSON and encrypts it with a random IV.
func EncryptJSON(key string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return Encrypt(key, data)
}

// EncryptJSONWithSeed serializes v to JSON and encrypts it with the IV
// derived from seed.
func EncryptJSONWithSeed(key string, v any, seed string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return EncryptWithSeed(key, data, seed)
}

// DecryptJSON decrypts blob and unmarshals the JSON plaintext into out.
func DecryptJSON(key, blob string, out any) error {
	plaintext, err := Decrypt(key, blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return nil
}

// DeriveIV returns the deterministic IV for seed.
func DeriveIV(seed string) ([]byte, error) {
	iv := make([]byte, IVSize)
	r := hkdf.New(sha256.New, []byte(seed), nil, ivInfo)
	if _, err := io.ReadFull(r, iv); err != nil {
		return nil, fmt.Errorf("failed to derive iv: %w", err)
	}
	return iv, nil
}

func newBlock(key string) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes for AES-256, got %d bytes", ErrInvalidKey, KeySize, len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return block, nil
}
