// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

// Package traceplug is request-tracing middleware for net/http.
// It continues or starts a distributed trace for each inbound request,
// annotates the span with configured request attributes, writes the
// traceparent header onto the response, binds the tracing identifiers into
// request-scoped log metadata, and closes the span from the response outcome.
package traceplug

import (
	"net/http"

	"github.com/KrzysiekJ/traceplug/trace/traceb3"
	"github.com/KrzysiekJ/traceplug/trace/tracecontext"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/KrzysiekJ/traceplug"

// Middleware traces the requests of handlers it wraps. Construct with New.
// Safe for concurrent use; per-request state lives on the stack and in the
// request context only.
type Middleware struct {
	provider   trace.TracerProvider
	attrs      []boundAttr
	spanName   SpanNameFunc
	spanStatus SpanStatusFunc
	acceptB3   bool
}

type options struct {
	owner      any
	specs      []AttrSpec
	spanName   SpanNameFunc
	spanStatus SpanStatusFunc
	provider   trace.TracerProvider
	acceptB3   bool
}

// Option configures the middleware. All configuration happens at
// construction time; a Middleware is immutable afterwards.
type Option func(*options)

// WithOwner sets the owning module. Local attribute resolvers are looked up
// on it, and its SpanName / SpanStatus methods, when present, replace the
// default span naming and status mapping.
func WithOwner(owner any) Option {
	return func(o *options) { o.owner = owner }
}

// WithAttributes appends attribute specs. They are resolved for every
// request, in the given order, before the span is annotated.
func WithAttributes(specs ...AttrSpec) Option {
	return func(o *options) { o.specs = append(o.specs, specs...) }
}

// WithSpanName replaces the default span naming.
func WithSpanName(fn SpanNameFunc) Option {
	return func(o *options) { o.spanName = fn }
}

// WithSpanStatus replaces the default response status mapping.
func WithSpanStatus(fn SpanStatusFunc) Option {
	return func(o *options) { o.spanStatus = fn }
}

// WithTracerProvider sets the provider spans are started with.
// Default is the global provider, see SetProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.provider = tp }
}

// WithB3 additionally accepts inbound Zipkin B3 headers when no valid
// traceparent is present. Outbound propagation stays traceparent.
func WithB3() Option {
	return func(o *options) { o.acceptB3 = true }
}

// New constructs the middleware. Attribute specs are bound and validated
// here: a missing or ill-typed resolver fails construction, not the request.
func New(opts ...Option) (*Middleware, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	mw := &Middleware{
		provider:   o.provider,
		spanName:   DefaultSpanName,
		spanStatus: DefaultSpanStatus,
		acceptB3:   o.acceptB3,
	}
	if n, ok := o.owner.(spanNamer); ok {
		mw.spanName = n.SpanName
	}
	if s, ok := o.owner.(spanStatuser); ok {
		mw.spanStatus = s.SpanStatus
	}
	if o.spanName != nil {
		mw.spanName = o.spanName
	}
	if o.spanStatus != nil {
		mw.spanStatus = o.spanStatus
	}

	for _, spec := range o.specs {
		bound, err := spec.bind(o.owner)
		if err != nil {
			return nil, err
		}
		mw.attrs = append(mw.attrs, bound)
	}
	return mw, nil
}

func (mw *Middleware) getTracer() trace.Tracer {
	if mw.provider != nil {
		return mw.provider.Tracer(tracerName)
	}
	return otel.Tracer(tracerName)
}

// parent decodes the inbound propagation header, traceparent first, B3 if
// enabled. Absent or malformed data is not an error: the request then
// starts a new root trace.
func (mw *Middleware) parent(r *http.Request) (tracecontext.TraceContext, bool) {
	if tc, ok := tracecontext.FromRequest(r); ok {
		return tc, true
	}
	if mw.acceptB3 {
		if tc, ok := traceb3.FromRequest(r); ok {
			return tc, true
		}
	}
	return tracecontext.TraceContext{}, false
}

// Handler wraps next with tracing.
// Usable directly as gorilla/mux middleware: router.Use(mw.Handler).
func (mw *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parent, hasParent := mw.parent(r)

		attrs, err := resolveAttrs(r, mw.attrs)
		if err != nil {
			// A resolver failure aborts the request. The span is still
			// opened and closed, so the trace records the failure.
			ctx, span, tc := mw.startSpan(r, mw.spanName(r), nil, parent, hasParent)
			tracecontext.SetHeader(w.Header(), tc)
			Logger(withLogEntry(ctx, tc)).WithError(err).Error("Attribute resolution failed")
			mw.finish(span, http.StatusInternalServerError, Status{Code: StatusCodeUnknown, Message: err.Error()})
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ctx, span, tc := mw.startSpan(r, mw.spanName(r), attrs, parent, hasParent)
		r = r.WithContext(withLogEntry(ctx, tc))
		tracecontext.SetHeader(w.Header(), tc)

		sw := &statusWriter{writer: w}
		defer func() {
			statusCode := sw.statusCode
			if p := recover(); p != nil {
				if statusCode == 0 {
					statusCode = http.StatusInternalServerError
				}
				mw.finish(span, statusCode, mw.spanStatus(r, statusCode))
				panic(p)
			}
			if statusCode == 0 {
				statusCode = http.StatusOK
			}
			mw.finish(span, statusCode, mw.spanStatus(r, statusCode))
		}()
		next.ServeHTTP(sw, r)
	})
}

// statusWriter captures the response status code for span finalization.
type statusWriter struct {
	writer     http.ResponseWriter
	statusCode int
}

// Header returns the header map to be written.
func (w *statusWriter) Header() http.Header {
	return w.writer.Header()
}

// Write writes supplied bytes to HTTP response.
// A write without an explicit WriteHeader means 200.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.writer.Write(b)
}

// WriteHeader sends HTTP status code.
func (w *statusWriter) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
	w.writer.WriteHeader(statusCode)
}
