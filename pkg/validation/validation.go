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

// Package validation provides centralized call-site input validation for
// the envelope service. All public operations validate their inputs here
// before any cryptographic work begins, so no partial envelopes are ever
// produced from bad input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrRequired indicates a required input was nil, empty, or missing.
	ErrRequired = errors.New("validation: required")

	// ErrInvalidType indicates an input had the wrong type for the
	// operation (e.g. a primitive where a structured payload is expected).
	ErrInvalidType = errors.New("validation: type")
)

// RequireString validates that a named string input is present.
func RequireString(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrRequired, name)
	}
	return nil
}

// RequireBytes validates that a named byte-slice input is present.
func RequireBytes(name string, value []byte) error {
	if len(value) == 0 {
		return fmt.Errorf("%w: %s", ErrRequired, name)
	}
	return nil
}

// RequirePayload validates a structured payload for the object encryption
// path. The payload must be non-nil and of a kind that serializes to a
// structured document: struct, map, slice, array, or a pointer to one.
// Primitives (strings, numbers, booleans) are rejected; the message path
// exists for plain strings.
func RequirePayload(v any) error {
	if v == nil {
		return fmt.Errorf("%w: payload", ErrRequired)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return fmt.Errorf("%w: payload", ErrRequired)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return nil
	default:
		return fmt.Errorf("%w: payload must be a structured value, got %s", ErrInvalidType, rv.Kind())
	}
}

// RequireTarget validates a deserialization target for the object
// decryption path. The target must be a non-nil pointer.
func RequireTarget(out any) error {
	if out == nil {
		return fmt.Errorf("%w: target", ErrRequired)
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("%w: target must be a pointer, got %s", ErrInvalidType, rv.Kind())
	}
	if rv.IsNil() {
		return fmt.Errorf("%w: target", ErrRequired)
	}
	return nil
}

// SanitizeForLog sanitizes a string for safe logging (prevents log injection).
func SanitizeForLog(s string) string {
	// Remove control characters and null bytes
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	// Limit length to prevent log flooding
	if len(s) > 1000 {
		s = s[:1000] + "...[truncated]"
	}

	return s
}
