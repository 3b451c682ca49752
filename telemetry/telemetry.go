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

// Package telemetry combines metrics, tracing, and access logging into
// the router's ObservabilityRecorder.
//
// Each request gets a generated request ID, one server span, one counter
// increment plus duration observation, and one access log line carrying
// the trace correlation fields. Any of the three components may be nil;
// the recorder skips what is not configured.
package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vexhttp/vex/metrics"
	"github.com/vexhttp/vex/telemetry/semconv"
	"github.com/vexhttp/vex/tracing"
)

// Telemetry implements the router's ObservabilityRecorder over the
// metrics, tracing, and logging packages.
type Telemetry struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
	tracer  *tracing.Tracer
}

// Option configures a Telemetry.
type Option func(*Telemetry)

// WithLogger enables access logging through the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Telemetry) { t.logger = logger }
}

// WithMetrics enables request metrics recording.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(t *Telemetry) { t.metrics = recorder }
}

// WithTracer enables request spans.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(t *Telemetry) { t.tracer = tracer }
}

// New creates a Telemetry recorder. With no options it records nothing
// but still threads request IDs through the context.
func New(opts ...Option) *Telemetry {
	t := &Telemetry{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// requestState carries the per-request telemetry handles between
// OnRequestStart and OnRequestEnd.
type requestState struct {
	requestID string
	method    string
	target    string
	userAgent string
	start     time.Time
	span      trace.Span
	metrics   *metrics.RequestMetrics
}

// OnRequestStart opens the request span, starts the duration clock, and
// attaches a request ID. The returned context carries the span; the
// returned state must be handed back to OnRequestEnd.
func (t *Telemetry) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	state := &requestState{
		requestID: uuid.NewString(),
		method:    req.Method,
		target:    req.URL.Path,
		userAgent: req.UserAgent(),
		start:     time.Now(),
	}

	if t.tracer != nil {
		// The route pattern is unknown until matching; the span starts
		// with the method only and is renamed in OnRequestEnd.
		ctx, state.span = t.tracer.StartRequestSpan(ctx, req, "")
	}
	if t.metrics != nil {
		state.metrics = t.metrics.Start(ctx)
	}

	return ctx, state
}

// OnRequestEnd records the outcome: metrics labeled with the final route
// pattern and status, the span renamed and closed, and one access log
// line with the trace correlation fields.
func (t *Telemetry) OnRequestEnd(ctx context.Context, state any, status int, routePattern string) {
	s, ok := state.(*requestState)
	if !ok {
		return
	}

	if t.metrics != nil {
		t.metrics.Finish(ctx, s.metrics, s.method, routePattern, status)
	}

	if t.tracer != nil {
		t.tracer.SetRoute(s.span, s.method, routePattern)
		t.tracer.FinishSpan(s.span, status)
	}

	if t.logger != nil {
		args := []any{
			semconv.HTTPMethod, s.method,
			semconv.HTTPRoute, routePattern,
			semconv.HTTPTarget, s.target,
			semconv.HTTPStatusCode, status,
			semconv.HTTPUserAgent, s.userAgent,
			semconv.RequestID, s.requestID,
			"duration_ms", time.Since(s.start).Milliseconds(),
		}
		if s.span != nil {
			if sc := s.span.SpanContext(); sc.IsValid() {
				args = append(args,
					semconv.TraceID, sc.TraceID().String(),
					semconv.SpanID, sc.SpanID().String(),
				)
			}
		}
		t.logger.Info("request completed", args...)
	}
}
