// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSpanName(t *testing.T) {
	assert := assert.New(t)
	r := httptest.NewRequest("GET", "http://example.org/users/42?x=1", nil)
	assert.Equal("/users/42", DefaultSpanName(r))
}

func TestServerNamePrefix(t *testing.T) {
	assert := assert.New(t)
	SetServerName("accounts")
	defer SetServerName("")

	r := httptest.NewRequest("GET", "/users/42", nil)
	assert.Equal("accounts:/users/42", DefaultSpanName(r))
}

func TestRouteSpanNameFallback(t *testing.T) {
	// Not routed by mux, so the plain path is used.
	r := httptest.NewRequest("GET", "/users/42?x=1", nil)
	assert.Equal(t, "/users/42", RouteSpanName(r))
}

func TestDefaultSpanStatus(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Status{Code: StatusCodeOK}, DefaultSpanStatus(nil, 200))
	assert.Equal(Status{Code: StatusCodeNotFound}, DefaultSpanStatus(nil, 404))
}
