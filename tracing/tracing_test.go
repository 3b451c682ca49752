// Copyright 2025 The Vex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer(t *testing.T, opts ...Option) *Tracer {
	t.Helper()
	tr, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	return tr
}

func TestStartRequestSpan_WithRoute(t *testing.T) {
	t.Parallel()

	tr := newTestTracer(t)
	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)

	ctx, span := tr.StartRequestSpan(context.Background(), req, "/users/<id>")
	defer tr.FinishSpan(span, http.StatusOK)

	require.NotNil(t, span)
	assert.Same(t, span, trace.SpanFromContext(ctx))
	assert.True(t, span.SpanContext().IsValid())
}

func TestStartRequestSpan_JoinsIncomingTraceContext(t *testing.T) {
	t.Parallel()

	tr := newTestTracer(t)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")

	_, span := tr.StartRequestSpan(context.Background(), req, "/x")
	defer tr.FinishSpan(span, http.StatusOK)

	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", span.SpanContext().TraceID().String())
}

func TestFinishSpan_NilSpanIsSafe(t *testing.T) {
	t.Parallel()

	tr := newTestTracer(t)

	tr.FinishSpan(nil, http.StatusOK)
}

func TestSetRoute_NilSpanIsSafe(t *testing.T) {
	t.Parallel()

	tr := newTestTracer(t)

	tr.SetRoute(nil, http.MethodGet, "/x")
}

func TestNew_InvalidProvider(t *testing.T) {
	t.Parallel()

	tr := &Tracer{provider: Provider("jaeger")}
	err := tr.initializeProvider()

	assert.ErrorIs(t, err, ErrInvalidProvider)
}

func TestNew_EmptyServiceName(t *testing.T) {
	t.Parallel()

	_, err := New(WithServiceName(""))

	assert.ErrorIs(t, err, ErrEmptyServiceName)
}

func TestNew_StdoutProvider(t *testing.T) {
	t.Parallel()

	var events []Event
	tr := newTestTracer(t,
		WithStdout(),
		WithServiceName("svc"),
		WithEventHandler(func(e Event) { events = append(events, e) }),
	)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	_, span := tr.StartRequestSpan(context.Background(), req, "/x")
	tr.FinishSpan(span, http.StatusInternalServerError)

	require.NotEmpty(t, events)
	assert.Equal(t, EventInfo, events[0].Type)
}
