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

// Package tracing creates OpenTelemetry request spans for the dispatch
// engine.
//
// Each request gets one server span named "METHOD pattern", carrying
// http.method, http.route, http.scheme, and http.target attributes. The
// route attribute is the registered pattern, keeping span names bounded.
// Incoming W3C trace context headers are honored, so spans join any
// distributed trace the caller started.
//
// Three exporters are supported: noop (default), stdout (development),
// and OTLP over HTTP. The package never touches the global OpenTelemetry
// tracer provider.
package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this package's tracer within the provider.
const tracerName = "vexhttp.dev/tracing"

// Provider selects the span exporter.
type Provider string

const (
	// ProviderNoop records nothing (default). Spans are created but never
	// exported, so instrumentation overhead stays negligible.
	ProviderNoop Provider = "noop"
	// ProviderStdout pretty-prints spans to stdout. Development only.
	ProviderStdout Provider = "stdout"
	// ProviderOTLP exports spans to an OTLP HTTP collector.
	ProviderOTLP Provider = "otlp"
)

// EventType classifies internal operational events.
type EventType int

const (
	EventError EventType = iota
	EventWarning
	EventInfo
	EventDebug
)

// Event is an internal operational event (exporter failures, provider
// lifecycle).
type Event struct {
	Type    EventType
	Message string
	Args    []any
}

// EventHandler processes operational events.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that forwards events to the
// given slog logger. A nil logger yields a no-op handler.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}
	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// Tracer owns the tracer provider and starts request spans. All methods
// are safe for concurrent use.
type Tracer struct {
	provider       Provider
	serviceName    string
	serviceVersion string
	otlpEndpoint   string
	eventHandler   EventHandler

	propagator  propagation.TextMapPropagator
	sdkProvider *sdktrace.TracerProvider
	tracer      trace.Tracer
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithNoop selects the no-export provider (default).
func WithNoop() Option {
	return func(t *Tracer) { t.provider = ProviderNoop }
}

// WithStdout selects the stdout exporter. Development only.
func WithStdout() Option {
	return func(t *Tracer) { t.provider = ProviderStdout }
}

// WithOTLP selects the OTLP HTTP exporter. The endpoint accepts a full
// URL; an http:// scheme implies an insecure connection.
func WithOTLP(endpoint string) Option {
	return func(t *Tracer) {
		t.provider = ProviderOTLP
		t.otlpEndpoint = endpoint
	}
}

// WithServiceName sets the service name on the trace resource.
func WithServiceName(name string) Option {
	return func(t *Tracer) { t.serviceName = name }
}

// WithServiceVersion sets the service version on the trace resource.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) { t.serviceVersion = version }
}

// WithPropagator replaces the default W3C trace context propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		if p != nil {
			t.propagator = p
		}
	}
}

// WithEventHandler sets the handler for internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(t *Tracer) {
		if handler != nil {
			t.eventHandler = handler
		}
	}
}

// New creates a Tracer with the given options and initializes the
// configured exporter. The default is the noop provider.
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:       ProviderNoop,
		serviceName:    "vex",
		serviceVersion: "unknown",
		eventHandler:   func(Event) {},
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.serviceName == "" {
		return nil, ErrEmptyServiceName
	}
	if err := t.initializeProvider(); err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return t, nil
}

// MustNew creates a Tracer and panics on initialization failure.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing.MustNew: %v", err))
	}
	return t
}

// StartRequestSpan extracts any incoming trace context from the request
// headers and starts the server span for it. The route is the registered
// pattern; pass an empty route when it is not known yet and set it later
// with SetRoute once matching has happened.
func (t *Tracer) StartRequestSpan(ctx context.Context, req *http.Request, route string) (context.Context, trace.Span) {
	ctx = t.propagator.Extract(ctx, propagation.HeaderCarrier(req.Header))

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}

	name := req.Method
	attrs := []attribute.KeyValue{
		attribute.String("http.method", req.Method),
		attribute.String("http.scheme", scheme),
		attribute.String("http.target", req.URL.Path),
	}
	if route != "" {
		name = req.Method + " " + route
		attrs = append(attrs, attribute.String("http.route", route))
	}

	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// SetRoute renames the span and records the matched route pattern. Used
// when the span was started before routing.
func (t *Tracer) SetRoute(span trace.Span, method, route string) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetName(method + " " + route)
	span.SetAttributes(attribute.String("http.route", route))
}

// FinishSpan closes the span with a status derived from the HTTP status
// code: 4xx and 5xx mark the span as an error. Safe with a nil or
// non-recording span.
func (t *Tracer) FinishSpan(span trace.Span, statusCode int) {
	if span == nil {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
		if statusCode >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	span.End()
}

// Propagator returns the configured propagator, for callers that inject
// trace context into outbound requests.
func (t *Tracer) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

// Shutdown flushes and stops the tracer provider. A no-op for the noop
// provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}

func (t *Tracer) emit(typ EventType, msg string, args ...any) {
	t.eventHandler(Event{Type: typ, Message: msg, Args: args})
}
