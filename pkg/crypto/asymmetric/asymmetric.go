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

// Package asymmetric provides RSA-OAEP encryption of small payloads,
// used to wrap the one-time symmetric key of an envelope.
//
// The OAEP parameters are fixed by the envelope wire format: SHA-256 as
// the main (label) hash and SHA-1 as the MGF1 mask hash. Both sides must
// use exactly this combination or decryption fails. SHA-1 here is a
// compatibility constraint of the mask generation function only, where
// collision resistance is irrelevant; it is not used to hash any data of
// consequence and must not be "upgraded" without versioning the format.
//
// Go's rsa.EncryptOAEP derives both the label hash and the mask from a
// single hash function, so the EME-OAEP encoding is implemented here
// directly (RFC 8017 section 7.1.1) with the two hashes split. Decryption
// uses the standard library's constant-time OAEP decoder, which accepts
// split hashes via rsa.OAEPOptions.
//
// Payload capacity is k - 2*hLen - 2 where k is the modulus size and hLen
// is the SHA-256 digest size: ~190 bytes for a 2048-bit key, ample for a
// 32-byte AES key.
package asymmetric

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"hash"
	"io"
	"math/big"
)

var (
	// ErrInvalidPublicKey indicates the public key is nil or malformed.
	ErrInvalidPublicKey = errors.New("asymmetric: invalid public key")

	// ErrInvalidPrivateKey indicates the private key is nil or malformed.
	ErrInvalidPrivateKey = errors.New("asymmetric: invalid private key")

	// ErrMessageTooLong indicates the payload exceeds the key's OAEP capacity.
	ErrMessageTooLong = errors.New("asymmetric: message too long for key size")

	// ErrDecryptionFailed indicates OAEP decryption failed. Wrong key and
	// corrupted ciphertext are intentionally not distinguished.
	ErrDecryptionFailed = errors.New("asymmetric: decryption failed")
)

// Encrypt encrypts a short payload with RSA-OAEP under the recipient's
// public key, using SHA-256 as the label hash and MGF1-SHA-1 as the mask.
//
// Parameters:
//   - random: Cryptographically secure random source (typically crypto/rand.Reader)
//   - publicKey: Recipient's RSA public key (2048 bits or larger)
//   - payload: Data to encrypt; must fit within k - 2*32 - 2 bytes
//
// Returns the RSA ciphertext, always exactly the modulus size in length.
func Encrypt(random io.Reader, publicKey *rsa.PublicKey, payload []byte) ([]byte, error) {
	if random == nil {
		return nil, errors.New("asymmetric: random source cannot be nil")
	}
	if publicKey == nil || publicKey.N == nil {
		return nil, ErrInvalidPublicKey
	}

	k := publicKey.Size()
	hLen := sha256.Size
	if len(payload) > k-2*hLen-2 {
		return nil, ErrMessageTooLong
	}

	// EME-OAEP encoding (RFC 8017 7.1.1) with an empty label.
	// DB = lHash || PS || 0x01 || M
	lHash := sha256.Sum256(nil)
	db := make([]byte, k-hLen-1)
	copy(db, lHash[:])
	db[len(db)-len(payload)-1] = 0x01
	copy(db[len(db)-len(payload):], payload)

	seed := make([]byte, hLen)
	if _, err := io.ReadFull(random, seed); err != nil {
		return nil, errors.New("asymmetric: failed to generate OAEP seed")
	}

	// Masks come from MGF1 over SHA-1; this is where the hash split lives.
	mgf1XOR(db, sha1.New(), seed)
	mgf1XOR(seed, sha1.New(), db)

	// EM = 0x00 || maskedSeed || maskedDB
	em := make([]byte, k)
	copy(em[1:1+hLen], seed)
	copy(em[1+hLen:], db)

	// RSA public operation; no secret material is involved, so the
	// variable-time big.Int exponentiation is acceptable here.
	m := new(big.Int).SetBytes(em)
	if m.Cmp(publicKey.N) >= 0 {
		return nil, ErrInvalidPublicKey
	}
	c := new(big.Int).Exp(m, big.NewInt(int64(publicKey.E)), publicKey.N)

	out := make([]byte, k)
	return c.FillBytes(out), nil
}

// Decrypt decrypts an RSA-OAEP ciphertext with the recipient's private
// key, using the same SHA-256/MGF1-SHA-1 parameter split as Encrypt.
//
// Any unpadding failure is reported as ErrDecryptionFailed without
// revealing the underlying cause.
func Decrypt(privateKey *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	if privateKey == nil || privateKey.N == nil {
		return nil, ErrInvalidPrivateKey
	}
	if len(ciphertext) != privateKey.Size() {
		return nil, ErrDecryptionFailed
	}

	opts := &rsa.OAEPOptions{
		Hash:    crypto.SHA256,
		MGFHash: crypto.SHA1,
	}
	payload, err := privateKey.Decrypt(nil, ciphertext, opts)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return payload, nil
}

// MaxPayloadSize returns the largest payload Encrypt accepts for the key.
func MaxPayloadSize(publicKey *rsa.PublicKey) int {
	if publicKey == nil || publicKey.N == nil {
		return 0
	}
	return publicKey.Size() - 2*sha256.Size - 2
}

// mgf1XOR XORs out with the MGF1 mask generated from seed using the
// given hash function (RFC 8017 appendix B.2.1).
func mgf1XOR(out []byte, h hash.Hash, seed []byte) {
	var counter [4]byte
	var digest []byte

	done := 0
	for done < len(out) {
		h.Reset()
		h.Write(seed)
		h.Write(counter[:])
		digest = h.Sum(digest[:0])

		for i := 0; i < len(digest) && done < len(out); i++ {
			out[done] ^= digest[i]
			done++
		}

		for i := 3; i >= 0; i-- {
			counter[i]++
			if counter[i] != 0 {
				break
			}
		}
	}
}
