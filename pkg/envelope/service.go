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

package envelope

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-envelope/pkg/correlation"
	"github.com/jeremyhahn/go-envelope/pkg/crypto/asymmetric"
	cryptorand "github.com/jeremyhahn/go-envelope/pkg/crypto/rand"
	"github.com/jeremyhahn/go-envelope/pkg/crypto/symmetric"
	"github.com/jeremyhahn/go-envelope/pkg/encoding"
	"github.com/jeremyhahn/go-envelope/pkg/logging"
	"github.com/jeremyhahn/go-envelope/pkg/metrics"
	"github.com/jeremyhahn/go-envelope/pkg/validation"
)

// keyPair holds the RSA keys for the service lifetime. Immutable after
// construction; the public key encrypts, the private key decrypts.
type keyPair struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// Service orchestrates the symmetric cipher, asymmetric cipher, and codec
// into the four public envelope operations.
//
// Thread-safe: Yes. The service holds no mutable state after construction;
// every operation works on per-call values only, so concurrent use needs
// no locking.
type Service struct {
	keys   keyPair
	cipher *symmetric.Cipher
	rng    cryptorand.Resolver
	logger *logging.Logger
}

// New constructs a Service from the given configuration.
//
// Both keys are required and must decode from base64 to valid PEM RSA key
// material. All construction failures root in ErrConfig.
func New(cfg Config) (*Service, error) {
	if cfg.PublicKey == "" {
		return nil, ErrPublicKeyRequired
	}
	if cfg.PrivateKey == "" {
		return nil, ErrPrivateKeyRequired
	}

	publicPEM, err := encoding.DecodeBase64(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyMaterial, err)
	}
	public, err := encoding.DecodeRSAPublicKeyPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyMaterial, err)
	}

	privatePEM, err := encoding.DecodeBase64(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyMaterial, err)
	}
	private, err := encoding.DecodeRSAPrivateKeyPEM(privatePEM, cfg.PrivateKeyPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyMaterial, err)
	}

	rng, err := cryptorand.NewResolver(cfg.RNG)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return &Service{
		keys:   keyPair{public: public, private: private},
		cipher: symmetric.NewCipher(rng),
		rng:    rng,
		logger: logging.NewLogger(cfg.Debug),
	}, nil
}

// EncryptObject serializes a structured payload, encrypts it under a
// fresh symmetric key/IV, and wraps the key under the public key.
// The returned envelope parts are raw bytes; this path is not the
// cross-platform wire form.
func (s *Service) EncryptObject(v any) (*Envelope, error) {
	start := time.Now()

	if err := validation.RequirePayload(v); err != nil {
		return nil, s.fail(metrics.OpEncryptObject, start, fmt.Errorf("%w: %w", ErrValidation, err))
	}

	plaintext, err := encoding.MarshalPayload(v)
	if err != nil {
		return nil, s.fail(metrics.OpEncryptObject, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	env, err := s.seal(plaintext)
	if err != nil {
		return nil, s.fail(metrics.OpEncryptObject, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	s.done(metrics.OpEncryptObject, start)
	return env, nil
}

// DecryptObject unwraps the symmetric key, decrypts the ciphertext, and
// deserializes the payload into out, which must be a non-nil pointer.
// The envelope must have been produced by EncryptObject under the same
// key pair; message-path envelopes are not interchangeable.
func (s *Service) DecryptObject(env *Envelope, out any) error {
	start := time.Now()

	if err := s.validateEnvelope(env); err != nil {
		return s.fail(metrics.OpDecryptObject, start, fmt.Errorf("%w: %w", ErrValidation, err))
	}
	if err := validation.RequireTarget(out); err != nil {
		return s.fail(metrics.OpDecryptObject, start, fmt.Errorf("%w: %w", ErrValidation, err))
	}

	plaintext, err := s.open(env)
	if err != nil {
		return s.fail(metrics.OpDecryptObject, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	if err := encoding.UnmarshalPayload(plaintext, out); err != nil {
		return s.fail(metrics.OpDecryptObject, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	s.done(metrics.OpDecryptObject, start)
	return nil
}

// EncryptMessage encrypts a UTF-8 string and returns the wire-compatible
// message form with every envelope part independently base64-encoded.
func (s *Service) EncryptMessage(message string) (*Message, error) {
	start := time.Now()

	if err := validation.RequireString("message", message); err != nil {
		return nil, s.fail(metrics.OpEncryptMessage, start, fmt.Errorf("%w: %w", ErrValidation, err))
	}

	env, err := s.seal([]byte(message))
	if err != nil {
		return nil, s.fail(metrics.OpEncryptMessage, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	s.done(metrics.OpEncryptMessage, start)
	return &Message{
		EncryptedKey: encoding.EncodeBase64(env.EncryptedKey),
		IV:           encoding.EncodeBase64(env.IV),
		Data:         encoding.EncodeBase64(env.Ciphertext),
	}, nil
}

// DecryptMessage reverses EncryptMessage: base64-decodes the three parts,
// unwraps the symmetric key, and decrypts back to the plaintext string.
func (s *Service) DecryptMessage(m *Message) (string, error) {
	start := time.Now()

	if err := s.validateMessage(m); err != nil {
		return "", s.fail(metrics.OpDecryptMessage, start, fmt.Errorf("%w: %w", ErrValidation, err))
	}

	encryptedKey, err := encoding.DecodeBase64(m.EncryptedKey)
	if err != nil {
		return "", s.fail(metrics.OpDecryptMessage, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}
	iv, err := encoding.DecodeBase64(m.IV)
	if err != nil {
		return "", s.fail(metrics.OpDecryptMessage, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}
	ciphertext, err := encoding.DecodeBase64(m.Data)
	if err != nil {
		return "", s.fail(metrics.OpDecryptMessage, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	plaintext, err := s.open(&Envelope{
		EncryptedKey: encryptedKey,
		IV:           iv,
		Ciphertext:   ciphertext,
	})
	if err != nil {
		return "", s.fail(metrics.OpDecryptMessage, start, fmt.Errorf("%w: %w", ErrCrypto, err))
	}

	s.done(metrics.OpDecryptMessage, start)
	return string(plaintext), nil
}

// seal runs the encryption pipeline: fresh key/IV, symmetric encrypt,
// wrap the key. Either the full envelope is produced or nothing is.
func (s *Service) seal(plaintext []byte) (*Envelope, error) {
	key, iv, ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	encryptedKey, err := asymmetric.Encrypt(s.rng, s.keys.public, key)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		EncryptedKey: encryptedKey,
		IV:           iv,
		Ciphertext:   ciphertext,
	}, nil
}

// open reverses seal: unwrap the key, then decrypt the ciphertext.
func (s *Service) open(env *Envelope) ([]byte, error) {
	key, err := asymmetric.Decrypt(s.keys.private, env.EncryptedKey)
	if err != nil {
		return nil, err
	}

	return s.cipher.Decrypt(key, env.IV, env.Ciphertext)
}

// validateEnvelope checks the three object-path fields are present.
func (s *Service) validateEnvelope(env *Envelope) error {
	if env == nil {
		return fmt.Errorf("%w: envelope", validation.ErrRequired)
	}
	if err := validation.RequireBytes("encryptedKey", env.EncryptedKey); err != nil {
		return err
	}
	if err := validation.RequireBytes("iv", env.IV); err != nil {
		return err
	}
	return validation.RequireBytes("ciphertext", env.Ciphertext)
}

// validateMessage checks the three message-path fields are present.
func (s *Service) validateMessage(m *Message) error {
	if m == nil {
		return fmt.Errorf("%w: message", validation.ErrRequired)
	}
	if err := validation.RequireString("encryptedKey", m.EncryptedKey); err != nil {
		return err
	}
	if err := validation.RequireString("iv", m.IV); err != nil {
		return err
	}
	return validation.RequireString("message", m.Data)
}

// fail records the failed operation and logs diagnostics on the debug
// channel with a correlation ID. The returned error keeps its uniform
// category message for callers.
func (s *Service) fail(op string, start time.Time, err error) error {
	metrics.RecordOperation(op, metrics.StatusError, time.Since(start).Seconds())
	metrics.RecordError(op, errorType(err))
	s.logger.Debug("envelope operation failed",
		"operation", op,
		"correlation_id", correlation.NewID(),
		"error", validation.SanitizeForLog(err.Error()))
	return err
}

// done records a successful operation.
func (s *Service) done(op string, start time.Time) {
	metrics.RecordOperation(op, metrics.StatusSuccess, time.Since(start).Seconds())
}
