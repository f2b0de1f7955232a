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
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-envelope/pkg/validation"
)

// Configuration errors, raised at construction only
var (
	// ErrConfig is the root of all construction-time failures.
	ErrConfig = errors.New("envelope: invalid configuration")

	// ErrPublicKeyRequired indicates the public key is missing from the configuration.
	ErrPublicKeyRequired = fmt.Errorf("%w: public key required", ErrConfig)

	// ErrPrivateKeyRequired indicates the private key is missing from the configuration.
	ErrPrivateKeyRequired = fmt.Errorf("%w: private key required", ErrConfig)

	// ErrInvalidKeyMaterial indicates key material was supplied but could
	// not be decoded to a usable RSA key.
	ErrInvalidKeyMaterial = fmt.Errorf("%w: invalid key material", ErrConfig)
)

// Call-site errors
var (
	// ErrValidation is the root of all input validation failures. It is
	// raised before any cryptographic work begins.
	ErrValidation = errors.New("envelope: invalid input")

	// ErrRequired matches validation failures for missing inputs.
	ErrRequired = validation.ErrRequired

	// ErrInvalidType matches validation failures for wrong-type inputs.
	ErrInvalidType = validation.ErrInvalidType

	// ErrCrypto is the single failure domain for the cryptographic
	// pipeline: any cipher or codec failure inside an operation is
	// re-signaled as ErrCrypto with the cause attached for errors.Is /
	// errors.As inspection. The message stays uniform; fuller diagnostics
	// go to the debug log channel only.
	ErrCrypto = errors.New("envelope: operation failed")
)

// errorType maps an error to its taxonomy category for metrics labels.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrCrypto):
		return "crypto"
	default:
		return "internal"
	}
}
