// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import "go.opentelemetry.io/otel/codes"

// ErrorCode identifies the non-OK subset of canonical span status codes
// that a finished span can be bucketed under. Values are wire ordinals
// used (offset by one) by the zsubtype query parameter for ztype=ERROR;
// reordering them is a breaking change.
type ErrorCode int

const (
	// ErrorCodeUnset covers spans that ended without an explicit status
	// being set (codes.Unset).
	ErrorCodeUnset ErrorCode = iota
	// ErrorCodeError covers spans whose status was explicitly set to
	// codes.Error.
	ErrorCodeError
	// ErrorCodeUnknown covers any status code the SDK reports that this
	// package does not recognize.
	ErrorCodeUnknown

	numErrorCodes = int(ErrorCodeUnknown) + 1
)

// String returns the canonical name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeUnset:
		return "UNSET"
	case ErrorCodeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// errorCodeFor maps an OTel status code to the ErrorCode ring it
// belongs to. Callers must only pass non-OK codes; codes.Ok has no
// ErrorCode and belongs to a LatencyBucket instead.
func errorCodeFor(code codes.Code) ErrorCode {
	switch code {
	case codes.Unset:
		return ErrorCodeUnset
	case codes.Error:
		return ErrorCodeError
	default:
		return ErrorCodeUnknown
	}
}
