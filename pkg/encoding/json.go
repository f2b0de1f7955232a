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

package encoding

import (
	"encoding/json"
	"fmt"
)

// MarshalPayload serializes a structured payload to its canonical JSON
// byte form for the envelope object path.
func MarshalPayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding: failed to marshal payload: %w", err)
	}
	return data, nil
}

// UnmarshalPayload deserializes JSON payload bytes into out, which must
// be a non-nil pointer.
func UnmarshalPayload(data []byte, out any) error {
	if len(data) == 0 {
		return ErrInvalidData
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("encoding: failed to unmarshal payload: %w", err)
	}
	return nil
}
