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

package symmetric

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncryptDecrypt_RoundTrip tests encryption and decryption round trips
// across payload sizes including block-aligned and empty inputs
func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := NewCipher(nil)

	payloads := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("fifteen bytes.."),
		[]byte("exactly sixteen!"),
		[]byte("a plaintext somewhat longer than a single AES block"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, plaintext := range payloads {
		key, iv, ciphertext, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
		assert.Len(t, iv, IVSize)
		assert.Equal(t, 0, len(ciphertext)%BlockSize)
		// PKCS#7 always pads, so ciphertext is strictly longer than plaintext
		assert.Greater(t, len(ciphertext), len(plaintext))

		decrypted, err := c.Decrypt(key, iv, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

// TestEncrypt_Freshness tests that successive encryptions never reuse key or IV
func TestEncrypt_Freshness(t *testing.T) {
	c := NewCipher(nil)
	plaintext := []byte("the same plaintext every time")

	keys := make(map[string]bool)
	ivs := make(map[string]bool)
	for i := 0; i < 200; i++ {
		key, iv, _, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		require.False(t, keys[string(key)], "key reused across encryptions")
		require.False(t, ivs[string(iv)], "IV reused across encryptions")
		keys[string(key)] = true
		ivs[string(iv)] = true
	}
}

// TestDecrypt_InvalidKeyLength tests rejection of malformed keys
func TestDecrypt_InvalidKeyLength(t *testing.T) {
	c := NewCipher(nil)

	_, err := c.Decrypt(make([]byte, 16), make([]byte, IVSize), make([]byte, BlockSize))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = c.Decrypt(nil, make([]byte, IVSize), make([]byte, BlockSize))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

// TestDecrypt_InvalidIVLength tests rejection of malformed IVs
func TestDecrypt_InvalidIVLength(t *testing.T) {
	c := NewCipher(nil)

	_, err := c.Decrypt(make([]byte, KeySize), make([]byte, 8), make([]byte, BlockSize))
	assert.ErrorIs(t, err, ErrInvalidIVLength)
}

// TestDecrypt_MalformedCiphertext tests that non-block-aligned or empty
// ciphertext fails with the uniform decryption error
func TestDecrypt_MalformedCiphertext(t *testing.T) {
	c := NewCipher(nil)
	key := make([]byte, KeySize)
	iv := make([]byte, IVSize)

	for _, n := range []int{0, 1, 15, 17, 31} {
		_, err := c.Decrypt(key, iv, make([]byte, n))
		assert.ErrorIs(t, err, ErrDecryptionFailed, "ciphertext length %d", n)
	}
}

// TestDecrypt_WrongKey tests that decrypting with the wrong key signals
// failure through the uniform decryption error, never a padding detail
func TestDecrypt_WrongKey(t *testing.T) {
	c := NewCipher(nil)

	key, iv, ciphertext, err := c.Encrypt([]byte("confidential payload"))
	require.NoError(t, err)

	wrongKey := make([]byte, KeySize)
	copy(wrongKey, key)
	wrongKey[0] ^= 0xFF

	plaintext, err := c.Decrypt(wrongKey, iv, ciphertext)
	if err != nil {
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	} else {
		// CBC without a MAC may yield garbage with coincidentally valid
		// padding; it must never silently equal the original plaintext.
		assert.NotEqual(t, []byte("confidential payload"), plaintext)
	}
}

// TestDecrypt_TamperedPadding tests that corrupting the final block fails
// with the uniform decryption error or yields garbage, never the original
func TestDecrypt_TamperedPadding(t *testing.T) {
	c := NewCipher(nil)
	original := []byte("tamper detection test payload")

	key, iv, ciphertext, err := c.Encrypt(original)
	require.NoError(t, err)

	tampered := make([]byte, len(ciphertext))
	copy(tampered, ciphertext)
	tampered[len(tampered)-1] ^= 0x01

	plaintext, err := c.Decrypt(key, iv, tampered)
	if err != nil {
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	} else {
		assert.NotEqual(t, original, plaintext)
	}
}

// TestCBC_KnownAnswerVector validates the CBC parameters against the
// NIST SP 800-38A F.2.5 CBC-AES256 vector. The standard library acts as
// the independent encrypting implementation; Decrypt must recover the
// vector's plaintext and the first ciphertext block must match the
// published value exactly.
func TestCBC_KnownAnswerVector(t *testing.T) {
	key, err := hex.DecodeString("603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")
	require.NoError(t, err)
	iv, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)
	plaintext, err := hex.DecodeString("6bc1bee22e409f96e93d7e117393172a")
	require.NoError(t, err)
	expectedBlock, err := hex.DecodeString("f58c4c04d6e5f1ba779eabfb5f7bfbd6")
	require.NoError(t, err)

	// Independent encryption: stdlib CBC over the PKCS#7-padded plaintext.
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	padded := pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	assert.Equal(t, expectedBlock, ciphertext[:BlockSize],
		"first CBC block must match the NIST known-answer vector")

	c := NewCipher(nil)
	decrypted, err := c.Decrypt(key, iv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

// TestPadUnpad tests PKCS#7 padding edge cases
func TestPadUnpad(t *testing.T) {
	// Empty input pads to a full block of 0x10.
	padded := pad([]byte(""))
	require.Len(t, padded, BlockSize)
	for _, b := range padded {
		assert.Equal(t, byte(BlockSize), b)
	}

	out, err := unpad(padded)
	require.NoError(t, err)
	assert.Empty(t, out)

	// Block-aligned input gains a whole extra block.
	aligned := bytes.Repeat([]byte{0x42}, BlockSize)
	padded = pad(aligned)
	require.Len(t, padded, 2*BlockSize)
	out, err = unpad(padded)
	require.NoError(t, err)
	assert.Equal(t, aligned, out)

	// Invalid padding values are rejected uniformly.
	bad := bytes.Repeat([]byte{0x42}, BlockSize)
	bad[BlockSize-1] = 0x00
	_, err = unpad(bad)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	bad[BlockSize-1] = 0x11 // > BlockSize
	_, err = unpad(bad)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	bad[BlockSize-1] = 0x03
	bad[BlockSize-2] = 0x02 // inconsistent padding bytes
	_, err = unpad(bad)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
