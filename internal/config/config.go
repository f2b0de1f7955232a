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

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-envelope/pkg/encoding"
	"github.com/jeremyhahn/go-envelope/pkg/envelope"
)

// Config represents the complete envelope tool configuration
type Config struct {
	Keys    KeysConfig    `yaml:"keys"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// KeysConfig supplies the RSA key pair. Each key is either inline
// base64-encoded PEM or a path to a PEM file; inline wins when both are
// set.
type KeysConfig struct {
	PublicKey      string `yaml:"public_key"`
	PublicKeyFile  string `yaml:"public_key_file"`
	PrivateKey     string `yaml:"private_key"`
	PrivateKeyFile string `yaml:"private_key_file"`

	// PrivateKeyPassword decrypts an encrypted PKCS#8 private key.
	PrivateKeyPassword string `yaml:"private_key_password"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics registry
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
// Key material must still arrive via environment or flags.
func Default() *Config {
	cfg := &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if pub := os.Getenv("ENVELOPE_PUBLIC_KEY"); pub != "" {
		cfg.Keys.PublicKey = pub
	}
	if pubFile := os.Getenv("ENVELOPE_PUBLIC_KEY_FILE"); pubFile != "" {
		cfg.Keys.PublicKeyFile = pubFile
	}
	if priv := os.Getenv("ENVELOPE_PRIVATE_KEY"); priv != "" {
		cfg.Keys.PrivateKey = priv
	}
	if privFile := os.Getenv("ENVELOPE_PRIVATE_KEY_FILE"); privFile != "" {
		cfg.Keys.PrivateKeyFile = privFile
	}
	if password := os.Getenv("ENVELOPE_PRIVATE_KEY_PASSWORD"); password != "" {
		cfg.Keys.PrivateKeyPassword = password
	}
	if level := os.Getenv("ENVELOPE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("ENVELOPE_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Keys.PublicKey == "" && c.Keys.PublicKeyFile == "" {
		return fmt.Errorf("a public key must be specified (keys.public_key or keys.public_key_file)")
	}
	if c.Keys.PrivateKey == "" && c.Keys.PrivateKeyFile == "" {
		return fmt.Errorf("a private key must be specified (keys.private_key or keys.private_key_file)")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if c.Logging.Format != "" && !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// ServiceConfig resolves the key material and builds the service
// configuration. File-based keys are read from disk and base64-encoded
// to the inline form the service expects.
func (c *Config) ServiceConfig() (envelope.Config, error) {
	publicKey, err := resolveKey(c.Keys.PublicKey, c.Keys.PublicKeyFile)
	if err != nil {
		return envelope.Config{}, fmt.Errorf("public key: %w", err)
	}
	privateKey, err := resolveKey(c.Keys.PrivateKey, c.Keys.PrivateKeyFile)
	if err != nil {
		return envelope.Config{}, fmt.Errorf("private key: %w", err)
	}

	cfg := envelope.Config{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		Debug:      strings.EqualFold(c.Logging.Level, "debug"),
	}
	if c.Keys.PrivateKeyPassword != "" {
		cfg.PrivateKeyPassword = []byte(c.Keys.PrivateKeyPassword)
	}
	return cfg, nil
}

// resolveKey returns the inline base64 value, or reads and encodes the
// PEM file when only a path is configured.
func resolveKey(inline, path string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if path == "" {
		return "", fmt.Errorf("no key material configured")
	}
	// #nosec G304 - Key file path is provided by admin/user
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}
	return encoding.EncodeBase64(pemBytes), nil
}
