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

// Package envelope implements hybrid envelope encryption: AES-256-CBC for
// bulk data and RSA-OAEP (SHA-256 digest, MGF1-SHA-1) for the one-time
// symmetric key.
//
// Each encryption generates a fresh 256-bit AES key and 128-bit IV,
// encrypts the payload under CBC, wraps the key under the recipient's RSA
// public key, and returns the three parts as an envelope. An envelope is
// only meaningful relative to the key pair that produced it.
//
// Two operation pairs exist and are not interchangeable:
//
//   - The object path (EncryptObject/DecryptObject) serializes structured
//     payloads to JSON and returns raw envelope bytes, for same-ecosystem
//     round trips where byte fidelity is preserved.
//   - The message path (EncryptMessage/DecryptMessage) takes a UTF-8
//     string and base64-encodes every envelope part independently. This is
//     the wire-compatible form: any implementation of the same protocol
//     using the same keys must produce and consume it bit-exactly.
//
// # Integrity Limitation
//
// The envelope format carries no MAC. CBC tampering may surface as a
// decryption error or as garbage plaintext; it is never silently the
// original. Callers needing authenticated encryption must layer it
// themselves, since changing the format here would break wire
// compatibility.
package envelope

// Envelope is the output of the object encryption path: the wrapped
// one-time key, the CBC initialization vector, and the ciphertext, all as
// raw bytes.
type Envelope struct {
	// EncryptedKey is the RSA-OAEP ciphertext of the one-time AES key.
	EncryptedKey []byte `json:"encryptedKey"`

	// IV is the 16-byte CBC initialization vector.
	IV []byte `json:"iv"`

	// Ciphertext is the AES-256-CBC encrypted, PKCS#7 padded payload.
	Ciphertext []byte `json:"ciphertext"`
}

// Message is the output of the message encryption path: the same three
// envelope parts, each independently base64-encoded for transport.
type Message struct {
	// EncryptedKey is the base64-encoded RSA-OAEP ciphertext of the AES key.
	EncryptedKey string `json:"encryptedKey"`

	// IV is the base64-encoded 16-byte initialization vector.
	IV string `json:"iv"`

	// Data is the base64-encoded AES-256-CBC ciphertext of the UTF-8 plaintext.
	Data string `json:"message"`
}

// Config supplies the key pair and optional collaborators for a Service.
//
// PublicKey and PrivateKey are base64-encoded PEM. Both are required:
// the service is constructed once with an immutable key pair and performs
// both directions for its lifetime.
type Config struct {
	// PublicKey is the base64-encoded PEM RSA public key (PKIX or PKCS#1).
	PublicKey string

	// PrivateKey is the base64-encoded PEM RSA private key (PKCS#8,
	// encrypted PKCS#8, or PKCS#1).
	PrivateKey string

	// PrivateKeyPassword decrypts an encrypted PKCS#8 private key.
	// Leave nil for unencrypted keys.
	PrivateKeyPassword []byte

	// RNG configures the random source (see pkg/crypto/rand).
	// Defaults to the software CSPRNG.
	RNG any

	// Debug enables the diagnostic log channel. User-facing errors stay
	// uniform either way.
	Debug bool
}
