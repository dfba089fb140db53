// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"context"
	"net/http"
	"sync"

	"github.com/KrzysiekJ/traceplug/trace/tracecontext"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startSpan starts the span of one request, as a child of parent when present.
// Returns the derived context, the live span and the span's own trace context,
// the latter for header re-encoding and logging.
func (mw *Middleware) startSpan(r *http.Request, name string, attrs []attribute.KeyValue, parent tracecontext.TraceContext, hasParent bool) (context.Context, trace.Span, tracecontext.TraceContext) {
	ctx := r.Context()
	if hasParent {
		ctx = trace.ContextWithRemoteSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID(parent.TraceID),
			SpanID:     trace.SpanID(parent.SpanID),
			TraceFlags: trace.TraceFlags(parent.Flags),
			Remote:     true,
		}))
	}

	ctx, span := mw.getTracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))

	// A real backend minted a fresh local span context. A noop tracer either
	// returns an empty one or echoes the remote parent; both keep Remote.
	if sc := span.SpanContext(); sc.IsValid() && !sc.IsRemote() {
		return ctx, span, tracecontext.TraceContext{
			TraceID: tracecontext.TraceID(sc.TraceID()),
			SpanID:  tracecontext.SpanID(sc.SpanID()),
			Flags:   byte(sc.TraceFlags()),
		}
	}

	// Fail open: the request proceeds untraced, yet the response header and
	// log fields still carry consistent identifiers.
	warnInactiveBackend()
	tc := tracecontext.TraceContext{TraceID: tracecontext.NewTraceID(), SpanID: tracecontext.NewSpanID()}
	if hasParent {
		tc.TraceID = parent.TraceID
		tc.Flags = parent.Flags
	}
	return ctx, span, tc
}

var warnBackendOnce sync.Once

func warnInactiveBackend() {
	warnBackendOnce.Do(func() {
		log.Warn("Tracing backend inactive, propagating synthesized trace context")
	})
}

// finish reports the status onto the span, then closes it.
// Called exactly once per request, on whatever path handling ends.
func (mw *Middleware) finish(span trace.Span, statusCode int, st Status) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int("census.status_code", int(st.Code)),
	)
	if st.Code == StatusCodeOK {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, st.Message)
	}
	span.End()
}
