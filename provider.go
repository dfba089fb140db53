// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const unsetFraction = float64(-32.0)

// ExportEnabled tells if span export was activated.
// If OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT is set, then export is activated automatically.
// You may set OTEL_TRACES_SAMPLER and OTEL_TRACES_SAMPLER_ARG to set the sampling type and fraction.
// You may fine-tune batch exporting parameters with OTEL_BSP_* environment variables.
// See also
//   - https://opentelemetry.io/docs/specs/otel/protocol/exporter/
//   - https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
var ExportEnabled = false

func init() {
	target := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if target == "" {
		target = os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
	}
	if target == "" {
		return
	}

	if err := SetOTLPGrpc(target, unsetFraction); err != nil {
		panic(err)
	}
}

// SetProvider installs the tracer provider middleware spans are started with
// by default, and a composite traceparent + B3 propagator for outbound
// requests made through NewClient.
func SetProvider(tp *sdktrace.TracerProvider) {
	if tp == nil {
		tp = sdktrace.NewTracerProvider()
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, b3.New(), b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader))))
}

func ensureScheme(target string) string {
	if strings.Contains(target, "://") {
		return target
	}

	// Add something. The exact scheme (grpc, https, http or even dns) is not important, it seems.
	return "http://" + target
}

// SetOTLPGrpc installs a provider exporting spans to the OTLP gRPC collector
// target address defined.
// Port is 4317, unless defined otherwise in provided target string.
// E.g. "http://localhost:4317".
//
// Fraction tells the fraction of spans to report, unless the parent is sampled.
//   - Zero means no sampling.
//   - Greater or equal 1 means sampling all the messages.
//   - Else the sampling fraction, e.g. 0.01 for 1%.
func SetOTLPGrpc(target string, fraction float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := serverName
	if name == "" {
		name = filepath.Base(os.Args[0])
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(name)))
	if err != nil {
		return err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(ensureScheme(target)))
	if err != nil {
		return err
	}

	batchSpanProcessor := sdktrace.NewBatchSpanProcessor(exporter)

	var sampler sdktrace.Sampler = nil
	if fraction != unsetFraction {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(fraction))
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler), // may be nil if fraction is unset, using env vars OTEL_TRACES_SAMPLER(_ARG) instead.
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(batchSpanProcessor),
	)

	SetProvider(tracerProvider)
	ExportEnabled = true
	return nil
}
