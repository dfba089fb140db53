// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromHTTP(t *testing.T) {
	for httpStatus, code := range map[int]StatusCode{
		200: StatusCodeOK,
		201: StatusCodeOK,
		204: StatusCodeOK,
		301: StatusCodeOK,
		302: StatusCodeOK,
		400: StatusCodeInvalidArgument,
		401: StatusCodeUnauthenticated,
		403: StatusCodePermissionDenied,
		404: StatusCodeNotFound,
		409: StatusCodeUnknown,
		422: StatusCodeInvalidArgument,
		429: StatusCodeResourceExhausted,
		499: StatusCodeCancelled,
		500: StatusCodeUnknown,
		501: StatusCodeUnimplemented,
		503: StatusCodeUnavailable,
		504: StatusCodeDeadlineExceeded,
		100: StatusCodeUnknown,
	} {
		st := StatusFromHTTP(httpStatus)
		assert.Equal(t, code, st.Code, "HTTP %d", httpStatus)
		assert.Equal(t, "", st.Message)
	}
}
