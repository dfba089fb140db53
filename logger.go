// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"context"
	"os"

	"github.com/KrzysiekJ/traceplug/trace/tracecontext"
	log "github.com/sirupsen/logrus"
)

func init() {
	logLevel, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&log.JSONFormatter{})
}

// SetFormatter lets caller set logrus log formatter.
func SetFormatter(formatter log.Formatter) {
	log.SetFormatter(formatter)
}

type loggerCtxKey string

const loggerCtxName = loggerCtxKey("traceplugLoggerEntry")

// withLogEntry stores a request-scoped log entry carrying the tracing
// identifiers. The entry lives in the request context only, so concurrent
// requests never see each other's identifiers.
func withLogEntry(ctx context.Context, tc tracecontext.TraceContext) context.Context {
	entry := log.WithFields(log.Fields{
		"trace_id":      tc.TraceID.String(),
		"span_id":       tc.SpanID.String(),
		"trace_options": int(tc.Flags),
	})
	return context.WithValue(ctx, loggerCtxName, entry)
}

// Logger returns the request-scoped log entry, so that every line logged
// while handling the request carries trace_id, span_id and trace_options.
// Outside a traced request the standard logger is returned.
func Logger(ctx context.Context) *log.Entry {
	if v := ctx.Value(loggerCtxName); v != nil {
		if entry, ok := v.(*log.Entry); ok {
			return entry
		}
	}
	return log.NewEntry(log.StandardLogger())
}
