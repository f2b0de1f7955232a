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

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeremyhahn/go-envelope/internal/config"
	"github.com/jeremyhahn/go-envelope/pkg/envelope"
	"github.com/jeremyhahn/go-envelope/pkg/metrics"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// PublicKeyFile is the path to the PEM RSA public key
	PublicKeyFile string

	// PrivateKeyFile is the path to the PEM RSA private key
	PrivateKeyFile string

	// PrivateKeyPassword decrypts an encrypted PKCS#8 private key
	PrivateKeyPassword string

	// OutputFormat controls output formatting (json, text)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
		Verbose:      false,
	}
}

// loadFileConfig loads the YAML configuration. An explicit --config path
// must exist; the default $HOME/.envelope.yaml is optional.
func (c *Config) loadFileConfig() (*config.Config, error) {
	if c.ConfigFile != "" {
		return config.Load(c.ConfigFile)
	}

	if home, err := os.UserHomeDir(); err == nil {
		defaultPath := filepath.Join(home, ".envelope.yaml")
		if _, err := os.Stat(defaultPath); err == nil {
			return config.Load(defaultPath)
		}
	}

	return config.Default(), nil
}

// CreateService builds the envelope service from the config file,
// environment, and command-line flags, in increasing precedence.
func (c *Config) CreateService() (*envelope.Service, error) {
	fileCfg, err := c.loadFileConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flag overrides
	if c.PublicKeyFile != "" {
		fileCfg.Keys.PublicKey = ""
		fileCfg.Keys.PublicKeyFile = c.PublicKeyFile
	}
	if c.PrivateKeyFile != "" {
		fileCfg.Keys.PrivateKey = ""
		fileCfg.Keys.PrivateKeyFile = c.PrivateKeyFile
	}
	if c.PrivateKeyPassword != "" {
		fileCfg.Keys.PrivateKeyPassword = c.PrivateKeyPassword
	}

	if fileCfg.Metrics.Enabled {
		metrics.Enable()
	}

	svcCfg, err := fileCfg.ServiceConfig()
	if err != nil {
		return nil, err
	}
	svcCfg.Debug = svcCfg.Debug || c.Verbose

	return envelope.New(svcCfg)
}
