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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestRecordOperation tests counter and histogram recording
func TestRecordOperation(t *testing.T) {
	Enable()

	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpEncryptMessage, StatusSuccess))
	RecordOperation(OpEncryptMessage, StatusSuccess, 0.002)
	after := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpEncryptMessage, StatusSuccess))

	assert.Equal(t, before+1, after)
}

// TestRecordError tests error counter recording
func TestRecordError(t *testing.T) {
	Enable()

	before := testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpDecryptMessage, "crypto"))
	RecordError(OpDecryptMessage, "crypto")
	after := testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpDecryptMessage, "crypto"))

	assert.Equal(t, before+1, after)
}

// TestDisable tests that recording is suppressed when disabled
func TestDisable(t *testing.T) {
	Disable()
	defer Enable()

	assert.False(t, IsEnabled())

	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpDecryptObject, StatusError))
	RecordOperation(OpDecryptObject, StatusError, 0.001)
	RecordError(OpDecryptObject, "cipher")
	after := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpDecryptObject, StatusError))

	assert.Equal(t, before, after)
}
