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

// Package symmetric provides AES-256-CBC encryption with PKCS#7 padding
// for the bulk-data half of envelope encryption.
//
// Every Encrypt call generates a fresh 256-bit key and 128-bit IV from a
// cryptographically secure random source. Keys and IVs are single-use:
// they exist only for the duration of one envelope operation and are never
// persisted or reused.
//
// # Integrity Limitation
//
// CBC mode provides confidentiality only. There is no MAC, so a tampered
// ciphertext may decrypt to garbage rather than fail outright; callers
// requiring integrity must layer it separately. This is a deliberate
// wire-compatibility constraint of the envelope format, not an oversight.
// Decryption failures are reported through a single sentinel error that
// does not distinguish padding faults from other causes, to avoid
// padding-oracle information leakage.
package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-envelope/pkg/crypto/rand"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32

	// IVSize is the CBC initialization vector size in bytes.
	IVSize = aes.BlockSize

	// BlockSize is the AES block size in bytes.
	BlockSize = aes.BlockSize
)

var (
	// ErrInvalidKeyLength indicates the supplied key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("symmetric: invalid key length")

	// ErrInvalidIVLength indicates the supplied IV is not 16 bytes.
	ErrInvalidIVLength = errors.New("symmetric: invalid IV length")

	// ErrDecryptionFailed indicates ciphertext could not be decrypted.
	// The cause (malformed length, padding mismatch) is intentionally not
	// distinguished.
	ErrDecryptionFailed = errors.New("symmetric: decryption failed")
)

// Cipher performs AES-256-CBC encryption and decryption.
//
// Thread-safe: Yes. Cipher holds no per-call state; a fresh block cipher
// context is created for every operation.
type Cipher struct {
	rng rand.Resolver
}

// NewCipher creates a Cipher using the given random source.
// If rng is nil, the software CSPRNG (crypto/rand) is used.
func NewCipher(rng rand.Resolver) *Cipher {
	if rng == nil {
		rng = &rand.SoftwareResolver{}
	}
	return &Cipher{rng: rng}
}

// Encrypt encrypts plaintext under AES-256-CBC with a freshly generated
// key and IV and returns all three parts.
//
// The key and IV are generated from the configured CSPRNG on every call.
// Returns an error if the random source fails or the cipher context
// cannot be initialized.
func (c *Cipher) Encrypt(plaintext []byte) (key, iv, ciphertext []byte, err error) {
	key, err = c.rng.Rand(KeySize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("symmetric: failed to generate key: %w", err)
	}

	iv, err = c.rng.Rand(IVSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("symmetric: failed to generate IV: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("symmetric: failed to create cipher: %w", err)
	}

	padded := pad(plaintext)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return key, iv, ciphertext, nil
}

// Decrypt decrypts ciphertext under AES-256-CBC with the supplied key and
// IV and strips the PKCS#7 padding.
//
// Returns ErrInvalidKeyLength or ErrInvalidIVLength for malformed
// parameters, and ErrDecryptionFailed for anything wrong with the
// ciphertext itself.
func (c *Cipher) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIVLength
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("symmetric: failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpad(plaintext)
}

// pad applies PKCS#7 padding, always appending 1..BlockSize bytes.
func pad(data []byte) []byte {
	padLen := BlockSize - len(data)%BlockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpad validates and strips PKCS#7 padding. The padding bytes are
// compared in constant time and every failure collapses to
// ErrDecryptionFailed.
func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > BlockSize {
		return nil, ErrDecryptionFailed
	}

	var diff byte
	for i := len(data) - padLen; i < len(data); i++ {
		diff |= data[i] ^ byte(padLen)
	}
	if subtle.ConstantTimeByteEq(diff, 0) != 1 {
		return nil, ErrDecryptionFailed
	}

	return data[:len(data)-padLen], nil
}
