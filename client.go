// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"net/http"

	"github.com/KrzysiekJ/traceplug/trace/traceb3"
	"github.com/KrzysiekJ/traceplug/trace/tracecontext"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Transport propagates the current trace context on outbound requests.
// The span of the request context, as set by Handler, supplies the
// identifiers; requests without one are sent unchanged.
type Transport struct {
	// Base is the wrapped round tripper. http.DefaultTransport if nil.
	Base http.RoundTripper

	// PropagateB3 additionally writes a Zipkin B3 header.
	PropagateB3 bool
}

// RoundTrip writes the traceparent header and forwards to the base transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	sc := trace.SpanContextFromContext(req.Context())
	if sc.HasTraceID() && sc.HasSpanID() {
		tc := tracecontext.TraceContext{
			TraceID: tracecontext.TraceID(sc.TraceID()),
			SpanID:  tracecontext.SpanID(sc.SpanID()),
			Flags:   byte(sc.TraceFlags()),
		}

		// RoundTrip must not modify the caller's request.
		req = req.Clone(req.Context())
		tracecontext.SetHeader(req.Header, tc)
		if t.PropagateB3 {
			traceb3.SetHeader(req.Header, tc)
		}
	}
	return base.RoundTrip(req)
}

// NewClient returns an HTTP client propagating the trace context of the
// request being served. When span export is active, outbound requests get
// a client span of their own, too.
func NewClient() *http.Client {
	var transport http.RoundTripper = &Transport{}
	if ExportEnabled {
		transport = otelhttp.NewTransport(transport)
	}
	return &http.Client{Transport: transport}
}
