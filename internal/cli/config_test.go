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
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeremyhahn/go-envelope/pkg/encoding"
	"github.com/jeremyhahn/go-envelope/pkg/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair writes a fresh RSA key pair as PEM files and returns the paths
func writeKeyPair(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubPEM, err := encoding.EncodeRSAPublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)
	privPEM, err := encoding.EncodeRSAPrivateKeyPEM(key, nil)
	require.NoError(t, err)

	dir := t.TempDir()
	pubPath := filepath.Join(dir, "public.pem")
	privPath := filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))
	return pubPath, privPath
}

// TestNewConfig tests default CLI configuration values
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
}

// TestCreateService_KeyFlags tests building a service from key file flags
func TestCreateService_KeyFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	pubPath, privPath := writeKeyPair(t)

	cfg := NewConfig()
	cfg.PublicKeyFile = pubPath
	cfg.PrivateKeyFile = privPath

	svc, err := cfg.CreateService()
	require.NoError(t, err)

	msg, err := svc.EncryptMessage("cli wiring")
	require.NoError(t, err)
	plaintext, err := svc.DecryptMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "cli wiring", plaintext)
}

// TestCreateService_ConfigFile tests building a service from a config file
func TestCreateService_ConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	pubPath, privPath := writeKeyPair(t)

	configPath := filepath.Join(t.TempDir(), "envelope.yaml")
	content := "keys:\n" +
		"  public_key_file: " + pubPath + "\n" +
		"  private_key_file: " + privPath + "\n" +
		"logging:\n  level: info\n  format: text\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	cfg := NewConfig()
	cfg.ConfigFile = configPath

	_, err := cfg.CreateService()
	assert.NoError(t, err)
}

// TestCreateService_MissingKeys tests the error path without key material
func TestCreateService_MissingKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := NewConfig()
	_, err := cfg.CreateService()
	assert.Error(t, err)
}

// TestPrinter_Message tests both output formats for encrypted messages
func TestPrinter_Message(t *testing.T) {
	msg := &envelope.Message{EncryptedKey: "a2V5", IV: "aXY=", Data: "ZGF0YQ=="}

	var text bytes.Buffer
	require.NoError(t, NewPrinter("text", &text).PrintMessage(msg))
	assert.Contains(t, text.String(), "a2V5")
	assert.Contains(t, text.String(), "aXY=")

	var jsonOut bytes.Buffer
	require.NoError(t, NewPrinter("json", &jsonOut).PrintMessage(msg))

	var decoded envelope.Message
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &decoded))
	assert.Equal(t, *msg, decoded)

	assert.Error(t, NewPrinter("xml", &text).PrintMessage(msg))
}

// TestReadMessage_Flags tests assembling a message from part flags
func TestReadMessage_Flags(t *testing.T) {
	decryptEncryptedKey = "a2V5"
	decryptIV = "aXY="
	decryptData = "ZGF0YQ=="
	t.Cleanup(func() {
		decryptEncryptedKey, decryptIV, decryptData = "", "", ""
	})

	msg, err := readMessage()
	require.NoError(t, err)
	assert.Equal(t, "a2V5", msg.EncryptedKey)

	decryptIV = ""
	_, err = readMessage()
	assert.Error(t, err, "partial flag sets are rejected")
}

// TestReadMessage_File tests reading a message document from a file
func TestReadMessage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.json")
	doc := `{"encryptedKey":"a2V5","iv":"aXY=","message":"ZGF0YQ=="}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	decryptInputFile = path
	t.Cleanup(func() { decryptInputFile = "" })

	msg, err := readMessage()
	require.NoError(t, err)
	assert.Equal(t, "ZGF0YQ==", msg.Data)
}

// TestReadInput tests the encrypt input source resolution
func TestReadInput(t *testing.T) {
	text, err := readInput([]string{"hello"}, "")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = readInput([]string{"hello"}, "also-a-file")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0600))
	text, err = readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "from file", text)
}
