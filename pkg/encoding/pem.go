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

// Package encoding handles the transport-safe representations the
// envelope protocol depends on: PEM/PKCS#8 RSA key material, base64 text,
// and JSON payload serialization.
package encoding

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// PEM block types
const (
	PEMTypeRSAPrivateKey       = "RSA PRIVATE KEY"
	PEMTypePrivateKey          = "PRIVATE KEY"
	PEMTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	PEMTypePublicKey           = "PUBLIC KEY"
	PEMTypeRSAPublicKey        = "RSA PUBLIC KEY"
)

// DecodeRSAPublicKeyPEM decodes PEM encoded data to an RSA public key.
// Accepts both PKIX "PUBLIC KEY" and PKCS#1 "RSA PUBLIC KEY" blocks.
func DecodeRSAPublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}

	if block.Type == PEMTypeRSAPublicKey {
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#1 public key: %w", err)
		}
		return pub, nil
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKIX public key: %w", err)
	}

	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return pub, nil
}

// DecodeRSAPrivateKeyPEM decodes PEM encoded data to an RSA private key.
// Accepts PKCS#1 "RSA PRIVATE KEY", PKCS#8 "PRIVATE KEY", and encrypted
// PKCS#8 "ENCRYPTED PRIVATE KEY" blocks. A password must be provided for
// the encrypted form.
func DecodeRSAPrivateKeyPEM(data []byte, password []byte) (*rsa.PrivateKey, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}

	if block.Type == PEMTypeRSAPrivateKey {
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#1 private key: %w", err)
		}
		return priv, nil
	}

	key, err := DecodePKCS8(block.Bytes, password)
	if err != nil {
		return nil, err
	}

	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return priv, nil
}

// EncodeRSAPublicKeyPEM encodes an RSA public key to PKIX PEM format.
func EncodeRSAPublicKeyPEM(publicKey *rsa.PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, ErrInvalidPublicKey
	}

	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PKIX public key: %w", err)
	}

	block := &pem.Block{
		Type:  PEMTypePublicKey,
		Bytes: der,
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, block); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeRSAPrivateKeyPEM encodes an RSA private key to PKCS#8 PEM format.
// If a password is provided, the key is encrypted and the block type is
// "ENCRYPTED PRIVATE KEY"; otherwise "PRIVATE KEY".
func EncodeRSAPrivateKeyPEM(privateKey *rsa.PrivateKey, password []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, ErrInvalidPrivateKey
	}

	der, err := EncodePKCS8(privateKey, password)
	if err != nil {
		return nil, err
	}

	blockType := PEMTypePrivateKey
	if len(password) > 0 {
		blockType = PEMTypeEncryptedPrivateKey
	}

	block := &pem.Block{
		Type:  blockType,
		Bytes: der,
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, block); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}

	return buf.Bytes(), nil
}
