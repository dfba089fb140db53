// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SpanNameFunc derives the span name from a request.
type SpanNameFunc func(r *http.Request) string

// SpanStatusFunc derives the span status from the request and the response
// status code.
type SpanStatusFunc func(r *http.Request, statusCode int) Status

// Owner capabilities. A value passed with WithOwner that implements either
// method overrides the respective default, unless an explicit option wins.
type spanNamer interface {
	SpanName(r *http.Request) string
}

type spanStatuser interface {
	SpanStatus(r *http.Request, statusCode int) Status
}

var serverName string

// SetServerName sets a server name to be used at span name formatting.
// Span names become "name:path" instead of bare "path".
func SetServerName(s string) {
	serverName = s
}

func formatSpanName(path string) string {
	if serverName != "" {
		return serverName + ":" + path
	}
	return path
}

// DefaultSpanName names the span after the request path.
// No query string, no host.
func DefaultSpanName(r *http.Request) string {
	return formatSpanName(r.URL.Path)
}

// RouteSpanName names the span after the gorilla/mux route template when the
// request was routed by one, e.g. "/users/{id}". Falls back to the path.
// Keeps span name cardinality low on parameterized routes.
func RouteSpanName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil && tmpl != "" {
			return formatSpanName(tmpl)
		}
	}
	return DefaultSpanName(r)
}

// DefaultSpanStatus maps the response status code with StatusFromHTTP.
func DefaultSpanStatus(_ *http.Request, statusCode int) Status {
	return StatusFromHTTP(statusCode)
}
