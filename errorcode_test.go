// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
)

func TestErrorCodeFor(t *testing.T) {
	assert.Equal(t, ErrorCodeUnset, errorCodeFor(codes.Unset))
	assert.Equal(t, ErrorCodeError, errorCodeFor(codes.Error))
	assert.Equal(t, ErrorCodeUnknown, errorCodeFor(codes.Code(99)))
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "UNSET", ErrorCodeUnset.String())
	assert.Equal(t, "ERROR", ErrorCodeError.String())
	assert.Equal(t, "UNKNOWN", ErrorCodeUnknown.String())
}

func TestNumErrorCodes(t *testing.T) {
	assert.Equal(t, 3, numErrorCodes)
}
