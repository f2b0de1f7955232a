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
	"io"
	"os"

	"github.com/spf13/cobra"
)

var encryptInputFile string

// encryptCmd represents the encrypt command
var encryptCmd = &cobra.Command{
	Use:   "encrypt [message]",
	Short: "Encrypt a message",
	Long: `Encrypt a UTF-8 message into the envelope wire format.

The message is read from the argument, from --file, or from stdin.
Use -o json to emit the wire document directly.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		plaintext, err := readInput(args, encryptInputFile)
		if err != nil {
			handleError(err)
		}

		svc, err := getConfig().CreateService()
		if err != nil {
			handleError(err)
		}

		printVerbose("encrypting %d bytes", len(plaintext))
		msg, err := svc.EncryptMessage(plaintext)
		if err != nil {
			handleError(err)
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if err := printer.PrintMessage(msg); err != nil {
			handleError(err)
		}
	},
}

func init() {
	encryptCmd.Flags().StringVarP(&encryptInputFile, "file", "f", "",
		"read the message from a file instead of the argument")
}

// readInput resolves the message source: argument, file, or stdin.
func readInput(args []string, file string) (string, error) {
	if len(args) == 1 && file != "" {
		return "", fmt.Errorf("provide either a message argument or --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if file != "" {
		// #nosec G304 - Input file path is provided by the user
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
