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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jeremyhahn/go-envelope/pkg/envelope"
	"github.com/spf13/cobra"
)

var (
	decryptInputFile    string
	decryptEncryptedKey string
	decryptIV           string
	decryptData         string
)

// decryptCmd represents the decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt an envelope message",
	Long: `Decrypt a message in the envelope wire format.

The message is read as a JSON document from --file or stdin, or
assembled from the --key, --iv, and --data flags.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		msg, err := readMessage()
		if err != nil {
			handleError(err)
		}

		svc, err := getConfig().CreateService()
		if err != nil {
			handleError(err)
		}

		plaintext, err := svc.DecryptMessage(msg)
		if err != nil {
			handleError(err)
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if err := printer.PrintPlaintext(plaintext); err != nil {
			handleError(err)
		}
	},
}

func init() {
	decryptCmd.Flags().StringVarP(&decryptInputFile, "file", "f", "",
		"read the message JSON document from a file")
	decryptCmd.Flags().StringVar(&decryptEncryptedKey, "key", "",
		"base64-encoded encrypted key part")
	decryptCmd.Flags().StringVar(&decryptIV, "iv", "",
		"base64-encoded IV part")
	decryptCmd.Flags().StringVar(&decryptData, "data", "",
		"base64-encoded ciphertext part")
}

// readMessage resolves the message source: flags, file, or stdin.
func readMessage() (*envelope.Message, error) {
	if decryptEncryptedKey != "" || decryptIV != "" || decryptData != "" {
		if decryptEncryptedKey == "" || decryptIV == "" || decryptData == "" {
			return nil, fmt.Errorf("--key, --iv, and --data must all be provided together")
		}
		return &envelope.Message{
			EncryptedKey: decryptEncryptedKey,
			IV:           decryptIV,
			Data:         decryptData,
		}, nil
	}

	var raw []byte
	var err error
	if decryptInputFile != "" {
		// #nosec G304 - Input file path is provided by the user
		raw, err = os.ReadFile(decryptInputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	var msg envelope.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message document: %w", err)
	}
	return &msg, nil
}
