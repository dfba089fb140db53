// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type captureTransport struct {
	req *http.Request
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.req = req
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func spanContextForTest(t *testing.T) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("b9c7c989f97918e1")
	require.NoError(t, err)
	return trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
}

func TestTransportInjects(t *testing.T) {
	assert := assert.New(t)
	capture := &captureTransport{}
	client := &http.Client{Transport: &Transport{Base: capture, PropagateB3: true}}

	ctx := trace.ContextWithSpanContext(context.Background(), spanContextForTest(t))
	req, err := http.NewRequestWithContext(ctx, "GET", "http://example.org/", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, capture.req)
	assert.Equal("00-0af7651916cd43dd8448eb211c80319c-b9c7c989f97918e1-01", capture.req.Header.Get("traceparent"))
	assert.Equal("0af7651916cd43dd8448eb211c80319c-b9c7c989f97918e1-1", capture.req.Header.Get("b3"))

	// The caller's request stays untouched.
	assert.Empty(req.Header.Get("traceparent"))
}

func TestTransportWithoutContext(t *testing.T) {
	assert := assert.New(t)
	capture := &captureTransport{}
	client := &http.Client{Transport: &Transport{Base: capture}}

	req, err := http.NewRequest("GET", "http://example.org/", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(capture.req.Header.Get("traceparent"))
	assert.Empty(capture.req.Header.Get("b3"))
}

func TestNewClient(t *testing.T) {
	client := NewClient()
	require.NotNil(t, client)
	_, ok := client.Transport.(*Transport)
	assert.True(t, ok) // no export active in tests
}
