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

// Package rand provides the cryptographically secure random source used
// for per-operation key and IV generation.
//
// Every envelope encryption generates a fresh symmetric key and IV. Key/IV
// reuse under CBC is catastrophic, so all randomness flows through a
// Resolver backed by crypto/rand. The Resolver implements io.Reader and can
// be passed anywhere the standard library expects a random source.
//
// # Thread Safety
//
// All Resolver implementations are thread-safe and can be safely shared
// across goroutines.
package rand

import (
	"crypto/rand"
	"fmt"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto selects the best available RNG source.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand (stdlib secure random).
	ModeSoftware Mode = "software"
)

// Config contains RNG configuration.
type Config struct {
	// Mode specifies the RNG source to use.
	// Defaults to ModeAuto if not specified.
	Mode Mode
}

// Source represents a random number generator.
type Source interface {
	// Rand returns n random bytes.
	// Returns an error if the RNG is unavailable or fails.
	Rand(n int) ([]byte, error)

	// Available returns true if this RNG source is available and ready.
	Available() bool

	// Close closes the RNG and releases any resources.
	Close() error
}

// Resolver provides the main interface for generating random numbers.
// Applications should create a Resolver at startup and reuse it.
//
// Resolver implements io.Reader, making it compatible with crypto/rand.Reader
// and usable anywhere an io.Reader is expected for random number generation.
type Resolver interface {
	// Rand returns n random bytes from the configured RNG source.
	Rand(n int) ([]byte, error)

	// Read implements io.Reader, making this Resolver usable as a drop-in
	// replacement for crypto/rand.Reader.
	Read(p []byte) (n int, err error)

	// Source returns the underlying RNG Source being used.
	// Useful for testing and debugging.
	Source() Source

	// Available returns true if at least one RNG source is available.
	Available() bool

	// Close closes the resolver and releases any resources.
	Close() error
}

// NewResolver creates a new RNG resolver with the given configuration.
// If config is nil or empty, auto mode is used.
func NewResolver(config interface{}) (Resolver, error) {
	cfg := normalizeConfig(config)

	switch cfg.Mode {
	case ModeAuto, ModeSoftware:
		return &SoftwareResolver{}, nil
	default:
		return nil, fmt.Errorf("unknown RNG mode: %s", cfg.Mode)
	}
}

// normalizeConfig converts various config types to *Config.
func normalizeConfig(config interface{}) *Config {
	if config == nil {
		return &Config{Mode: ModeAuto}
	}

	switch v := config.(type) {
	case Mode:
		return &Config{Mode: v}
	case *Config:
		if v == nil {
			return &Config{Mode: ModeAuto}
		}
		if v.Mode == "" {
			v.Mode = ModeAuto
		}
		return v
	default:
		return &Config{Mode: ModeAuto}
	}
}

// SoftwareResolver uses crypto/rand from the Go standard library.
type SoftwareResolver struct{}

var _ Resolver = (*SoftwareResolver)(nil)

func (s *SoftwareResolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	return buf, err
}

// Read implements io.Reader for compatibility with crypto/rand.Reader.
func (s *SoftwareResolver) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Source() Source {
	return &softwareSource{}
}

func (s *SoftwareResolver) Available() bool {
	return true // crypto/rand always available
}

func (s *SoftwareResolver) Close() error {
	return nil // Nothing to close
}

type softwareSource struct{}

func (s *softwareSource) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	return buf, err
}

func (s *softwareSource) Available() bool {
	return true
}

func (s *softwareSource) Close() error {
	return nil
}
