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

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexhttp/vex/metrics"
	"github.com/vexhttp/vex/tracing"
)

func TestTelemetry_AccessLogLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	tel := New(WithLogger(logger))

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("User-Agent", "vex-test/1.0")
	ctx, state := tel.OnRequestStart(context.Background(), req)
	require.NotNil(t, state)

	tel.OnRequestEnd(ctx, state, http.StatusOK, "/users/<id>")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "GET", entry["http.method"])
	assert.Equal(t, "/users/<id>", entry["http.route"])
	assert.Equal(t, "/users/42", entry["http.target"])
	assert.Equal(t, float64(http.StatusOK), entry["http.status_code"])
	assert.Equal(t, "vex-test/1.0", entry["http.user_agent"])
	assert.NotEmpty(t, entry["req.id"])
	assert.Contains(t, entry, "duration_ms")
}

func TestTelemetry_RequestIDsAreUnique(t *testing.T) {
	t.Parallel()

	tel := New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, s1 := tel.OnRequestStart(context.Background(), req)
	_, s2 := tel.OnRequestStart(context.Background(), req)

	id1 := s1.(*requestState).requestID
	id2 := s2.(*requestState).requestID
	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestTelemetry_WithTracerCorrelatesLogAndSpan(t *testing.T) {
	t.Parallel()

	tracer, err := tracing.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	tel := New(WithLogger(logger), WithTracer(tracer))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	ctx, state := tel.OnRequestStart(context.Background(), req)
	tel.OnRequestEnd(ctx, state, http.StatusOK, "/orders")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotEmpty(t, entry["trace_id"])
	assert.NotEmpty(t, entry["span_id"])
}

func TestTelemetry_WithMetrics(t *testing.T) {
	t.Parallel()

	recorder, err := metrics.New(metrics.WithServiceName("telemetry-test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Shutdown(context.Background()) })

	tel := New(WithMetrics(recorder))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	ctx, state := tel.OnRequestStart(context.Background(), req)
	tel.OnRequestEnd(ctx, state, http.StatusNotFound, "_not_found")

	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "http_server_requests")
}

func TestTelemetry_UnknownStateIsIgnored(t *testing.T) {
	t.Parallel()

	tel := New()

	// Must not panic with a foreign state value.
	tel.OnRequestEnd(context.Background(), "bogus", http.StatusOK, "/x")
}
