// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

// Package tracecontext implements the W3C trace-context wire format used to
// propagate a trace across HTTP hops.
// See https://www.w3.org/TR/trace-context
package tracecontext

import (
	"encoding/binary"
	"encoding/hex"
	"math/rand"
	"net/http"
	"strings"
)

// Header is the canonical name of the propagation header.
// Matching is case-insensitive on the wire; this lower-case form is written.
const Header = "traceparent"

// version is the only traceparent version understood. "ff" is forbidden
// by the standard and anything else is treated as no context.
const version = "00"

// FlagSampled is the sampled bit of the trace options.
const FlagSampled = 0x01

// TraceID is a 128-bit trace identifier. All-zero means undefined.
type TraceID [16]byte

// SpanID is a 64-bit span identifier. All-zero means undefined.
type SpanID [8]byte

// String returns the 32 lowercase hex digit form of the trace ID.
func (id TraceID) String() string {
	return hex.EncodeToString(id[:])
}

// IsValid tells if the trace ID is defined, i.e. not all-zero.
func (id TraceID) IsValid() bool {
	return id != TraceID{}
}

// String returns the 16 lowercase hex digit form of the span ID.
func (id SpanID) String() string {
	return hex.EncodeToString(id[:])
}

// IsValid tells if the span ID is defined, i.e. not all-zero.
func (id SpanID) IsValid() bool {
	return id != SpanID{}
}

// TraceContext is one hop's view of a distributed trace: the trace the
// request belongs to, the span the sender was in, and the trace options.
// Values are immutable; spanning creates a new one.
type TraceContext struct {
	TraceID TraceID
	SpanID  SpanID
	Flags   byte
}

// Sampled tells if the sampled bit is set in the trace options.
func (tc TraceContext) Sampled() bool {
	return tc.Flags&FlagSampled != 0
}

// Encode renders the context in traceparent form,
// e.g. "00-0af7651916cd43dd8448eb211c80319c-b9c7c989f97918e1-01".
func (tc TraceContext) Encode() string {
	var flags [1]byte
	flags[0] = tc.Flags
	return version + "-" + tc.TraceID.String() + "-" + tc.SpanID.String() + "-" + hex.EncodeToString(flags[:])
}

// Decode parses a traceparent header value.
// Returns false on anything malformed: wrong field count or width, unknown
// version, non-hex bytes or undefined (all-zero) identifiers.
// Never panics, whatever the input.
func Decode(value string) (TraceContext, bool) {
	fields := strings.Split(value, "-")
	if len(fields) != 4 {
		return TraceContext{}, false
	}
	if fields[0] != version {
		return TraceContext{}, false
	}
	if len(fields[1]) != 32 || len(fields[2]) != 16 || len(fields[3]) != 2 {
		return TraceContext{}, false
	}

	var tc TraceContext
	if _, err := hex.Decode(tc.TraceID[:], []byte(fields[1])); err != nil {
		return TraceContext{}, false
	}
	if _, err := hex.Decode(tc.SpanID[:], []byte(fields[2])); err != nil {
		return TraceContext{}, false
	}
	var flags [1]byte
	if _, err := hex.Decode(flags[:], []byte(fields[3])); err != nil {
		return TraceContext{}, false
	}
	tc.Flags = flags[0]

	if !tc.TraceID.IsValid() || !tc.SpanID.IsValid() {
		return TraceContext{}, false
	}
	return tc, true
}

// FromRequest decodes the traceparent header of a request.
// Returns false if the header is absent or malformed.
func FromRequest(r *http.Request) (TraceContext, bool) {
	if r.Header == nil {
		return TraceContext{}, false
	}
	return Decode(r.Header.Get(Header))
}

// SetHeader writes the context as the traceparent header, replacing any
// previous value. Input headers object must not be nil.
func SetHeader(headers http.Header, tc TraceContext) {
	headers.Set(Header, tc.Encode())
}

// NewTraceID generates a semi-random, always defined trace ID.
func NewTraceID() TraceID {
	var id TraceID
	for !id.IsValid() {
		binary.BigEndian.PutUint64(id[:8], rand.Uint64()) // #nosec random is weak intentionally
		binary.BigEndian.PutUint64(id[8:], rand.Uint64()) // #nosec
	}
	return id
}

// NewSpanID generates a semi-random, always defined span ID.
func NewSpanID() SpanID {
	var id SpanID
	for !id.IsValid() {
		binary.BigEndian.PutUint64(id[:], rand.Uint64()) // #nosec random is weak intentionally
	}
	return id
}
