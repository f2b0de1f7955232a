// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-envelope.
//
// go-envelope is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package encoding

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// TestPublicKeyPEM_RoundTrip tests PKIX public key encode/decode
func TestPublicKeyPEM_RoundTrip(t *testing.T) {
	key := generateTestKey(t)

	pemData, err := EncodeRSAPublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)
	assert.Contains(t, string(pemData), "BEGIN PUBLIC KEY")

	decoded, err := DecodeRSAPublicKeyPEM(pemData)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(decoded))
}

// TestPublicKeyPEM_PKCS1 tests decoding of "RSA PUBLIC KEY" blocks
func TestPublicKeyPEM_PKCS1(t *testing.T) {
	key := generateTestKey(t)

	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  PEMTypeRSAPublicKey,
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	})

	decoded, err := DecodeRSAPublicKeyPEM(pemData)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(decoded))
}

// TestPrivateKeyPEM_RoundTrip tests PKCS#8 private key encode/decode
func TestPrivateKeyPEM_RoundTrip(t *testing.T) {
	key := generateTestKey(t)

	pemData, err := EncodeRSAPrivateKeyPEM(key, nil)
	require.NoError(t, err)
	assert.Contains(t, string(pemData), "BEGIN PRIVATE KEY")

	decoded, err := DecodeRSAPrivateKeyPEM(pemData, nil)
	require.NoError(t, err)
	assert.True(t, key.Equal(decoded))
}

// TestPrivateKeyPEM_Encrypted tests password-protected PKCS#8 round trips
func TestPrivateKeyPEM_Encrypted(t *testing.T) {
	key := generateTestKey(t)
	password := []byte("correct horse battery staple")

	pemData, err := EncodeRSAPrivateKeyPEM(key, password)
	require.NoError(t, err)
	assert.Contains(t, string(pemData), "BEGIN ENCRYPTED PRIVATE KEY")

	decoded, err := DecodeRSAPrivateKeyPEM(pemData, password)
	require.NoError(t, err)
	assert.True(t, key.Equal(decoded))

	// Wrong password fails
	_, err = DecodeRSAPrivateKeyPEM(pemData, []byte("wrong"))
	require.Error(t, err)
}

// TestPrivateKeyPEM_PKCS1 tests decoding of legacy "RSA PRIVATE KEY" blocks
func TestPrivateKeyPEM_PKCS1(t *testing.T) {
	key := generateTestKey(t)

	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  PEMTypeRSAPrivateKey,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	decoded, err := DecodeRSAPrivateKeyPEM(pemData, nil)
	require.NoError(t, err)
	assert.True(t, key.Equal(decoded))
}

// TestDecode_InvalidInputs tests malformed input rejection
func TestDecode_InvalidInputs(t *testing.T) {
	_, err := DecodeRSAPublicKeyPEM(nil)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = DecodeRSAPublicKeyPEM([]byte("not pem at all"))
	assert.ErrorIs(t, err, ErrInvalidPEMEncoding)

	_, err = DecodeRSAPrivateKeyPEM(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = DecodeRSAPrivateKeyPEM([]byte("garbage"), nil)
	assert.ErrorIs(t, err, ErrInvalidPEMEncoding)
}

// TestDecode_NonRSAKey tests rejection of valid PEM holding a non-RSA key
func TestDecode_NonRSAKey(t *testing.T) {
	// An Ed25519 PKIX block is valid PEM but not RSA.
	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(edPub)
	require.NoError(t, err)
	pemData := pem.EncodeToMemory(&pem.Block{Type: PEMTypePublicKey, Bytes: der})

	_, err = DecodeRSAPublicKeyPEM(pemData)
	assert.ErrorIs(t, err, ErrNotRSAKey)
}
