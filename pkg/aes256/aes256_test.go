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

package aes256

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "object", value: map[string]any{"name": "Ada", "age": float64(36), "tags": []any{"a", "b"}}},
		{name: "string", value: "plain text with <html> & symbols"},
		{name: "number", value: float64(42)},
		{name: "null", value: nil},
		{name: "nested", value: map[string]any{"outer": map[string]any{"inner": true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := EncryptJSON(testKey, tt.value)
			require.NoError(t, err)

			var got any
			require.NoError(t, DecryptJSON(testKey, blob, &got))
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestEncrypt_RandomIV(t *testing.T) {
	a, err := Encrypt(testKey, []byte("same"))
	require.NoError(t, err)
	b, err := Encrypt(testKey, []byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEncrypt_DeterministicIV(t *testing.T) {
	a, err := EncryptWithSeed(testKey, []byte(`{"userId":"u1"}`), "u1tok")
	require.NoError(t, err)
	b, err := EncryptWithSeed(testKey, []byte(`{"userId":"u1"}`), "u1tok")
	require.NoError(t, err)
	c, err := EncryptWithSeed(testKey, []byte(`{"userId":"u1"}`), "u1tok2")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	plain, err := Decrypt(testKey, a)
	require.NoError(t, err)
	assert.Equal(t, `{"userId":"u1"}`, string(plain))
}

func TestEncryptWithSeed_EmptySeed(t *testing.T) {
	a, err := EncryptJSONWithSeed(testKey, map[string]string{"userId": "", "userToken": ""}, "")
	require.NoError(t, err)
	b, err := EncryptJSONWithSeed(testKey, map[string]string{"userId": "", "userToken": ""}, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	iv, err := DeriveIV("")
	require.NoError(t, err)
	assert.Equal(t, iv, raw[:IVSize])
}

func TestEncrypt_Format(t *testing.T) {
	blob, err := EncryptWithSeed(testKey, []byte("hello"), "seed")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	require.Len(t, raw, IVSize+len("hello"))

	iv, err := DeriveIV("seed")
	require.NoError(t, err)
	assert.Equal(t, iv, raw[:IVSize])
}

func TestInvalidKey(t *testing.T) {
	_, err := Encrypt("short", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = EncryptWithSeed("short", []byte("x"), "seed")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Decrypt(strings.Repeat("k", 33), "AAAA")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDecrypt_InvalidCiphertext(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "not base64", blob: "%%% not base64 %%%"},
		{name: "too short", blob: base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(testKey, tt.blob)
			assert.ErrorIs(t, err, ErrInvalidCiphertext)
		})
	}
}

func TestDecryptJSON_Garbage(t *testing.T) {
	blob := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", IVSize+8)))

	var out any
	err := DecryptJSON(testKey, blob, &out)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
