// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

// Package traceb3 reads and writes Zipkin (B3) trace headers.
// Single-line "b3" and multi-line "X-B3-*" forms are understood, letting
// requests from Istio/Envoy meshes join the trace even without a traceparent.
// See https://github.com/openzipkin/b3-propagation
package traceb3

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/KrzysiekJ/traceplug/trace/tracecontext"
)

const (
	headerB3Single  = "b3"
	headerB3TraceID = "X-B3-TraceId"
	headerB3SpanID  = "X-B3-SpanId"
	headerB3Sampled = "X-B3-Sampled"
)

// FromRequest decodes B3 trace headers of a request.
// Multi-line headers take precedence, as in mesh sidecars.
// Returns false if no well-formed B3 data is present.
func FromRequest(r *http.Request) (tracecontext.TraceContext, bool) {
	if r.Header == nil {
		return tracecontext.TraceContext{}, false
	}

	if tc, ok := fromMultiLine(r.Header); ok {
		return tc, true
	}
	return fromSingleLine(r.Header.Get(headerB3Single))
}

func fromMultiLine(headers http.Header) (tracecontext.TraceContext, bool) {
	traceID := headers.Get(headerB3TraceID)
	if traceID == "" {
		return tracecontext.TraceContext{}, false
	}
	return parse(traceID, headers.Get(headerB3SpanID), headers.Get(headerB3Sampled))
}

func fromSingleLine(value string) (tracecontext.TraceContext, bool) {
	if value == "" {
		return tracecontext.TraceContext{}, false
	}

	fields := strings.SplitN(value, "-", 5)
	if len(fields) > 4 || len(fields) < 2 {
		return tracecontext.TraceContext{}, false
	}

	sampled := ""
	if len(fields) >= 3 {
		sampled = fields[2]
	}
	return parse(fields[0], fields[1], sampled)
}

// parse converts B3 string fields to a trace context.
// B3 allows 64-bit trace IDs; those are left-padded to 128 bits.
func parse(traceID, spanID, sampled string) (tracecontext.TraceContext, bool) {
	if len(traceID) == 16 {
		traceID = "0000000000000000" + traceID
	}
	if len(traceID) != 32 || len(spanID) != 16 {
		return tracecontext.TraceContext{}, false
	}

	var tc tracecontext.TraceContext
	if _, err := hex.Decode(tc.TraceID[:], []byte(traceID)); err != nil {
		return tracecontext.TraceContext{}, false
	}
	if _, err := hex.Decode(tc.SpanID[:], []byte(spanID)); err != nil {
		return tracecontext.TraceContext{}, false
	}
	if !tc.TraceID.IsValid() || !tc.SpanID.IsValid() {
		return tracecontext.TraceContext{}, false
	}

	switch sampled {
	case "1", "true", "d":
		tc.Flags = tracecontext.FlagSampled
	}
	return tc, true
}

// SetHeader writes the context as a single-line b3 header.
// Input headers object must not be nil.
func SetHeader(headers http.Header, tc tracecontext.TraceContext) {
	value := tc.TraceID.String() + "-" + tc.SpanID.String()
	if tc.Sampled() {
		value += "-1"
	}
	headers.Set(headerB3Single, value)
}
