// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import "net/http"

// StatusCode is a canonical trace status code, as defined by the census
// tracing model. Zero is OK.
type StatusCode int

// Canonical trace status codes.
const (
	StatusCodeOK                StatusCode = 0
	StatusCodeCancelled         StatusCode = 1
	StatusCodeUnknown           StatusCode = 2
	StatusCodeInvalidArgument   StatusCode = 3
	StatusCodeDeadlineExceeded  StatusCode = 4
	StatusCodeNotFound          StatusCode = 5
	StatusCodePermissionDenied  StatusCode = 7
	StatusCodeResourceExhausted StatusCode = 8
	StatusCodeUnimplemented     StatusCode = 12
	StatusCodeUnavailable       StatusCode = 14
	StatusCodeUnauthenticated   StatusCode = 16
)

// Status is what a span is closed with: a canonical code and an optional
// message. Computed once per request from the final response state.
type Status struct {
	Code    StatusCode
	Message string
}

// statusClientClosedRequest is the de facto nginx code for a client that
// went away before the response was sent.
const statusClientClosedRequest = 499

// StatusFromHTTP maps an HTTP response status code to a trace status,
// following the standard census HTTP mapping. Message is left empty.
func StatusFromHTTP(statusCode int) Status {
	if statusCode >= 200 && statusCode < 400 {
		return Status{Code: StatusCodeOK}
	}

	var code StatusCode
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = StatusCodeInvalidArgument
	case http.StatusUnauthorized:
		code = StatusCodeUnauthenticated
	case http.StatusForbidden:
		code = StatusCodePermissionDenied
	case http.StatusNotFound:
		code = StatusCodeNotFound
	case http.StatusTooManyRequests:
		code = StatusCodeResourceExhausted
	case statusClientClosedRequest:
		code = StatusCodeCancelled
	case http.StatusNotImplemented:
		code = StatusCodeUnimplemented
	case http.StatusServiceUnavailable:
		code = StatusCodeUnavailable
	case http.StatusGatewayTimeout:
		code = StatusCodeDeadlineExceeded
	default:
		code = StatusCodeUnknown
	}
	return Status{Code: code}
}
