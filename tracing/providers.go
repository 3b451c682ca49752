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
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

func (t *Tracer) initializeProvider() error {
	switch t.provider {
	case ProviderNoop:
		return t.initNoop()
	case ProviderStdout:
		return t.initStdout()
	case ProviderOTLP:
		return t.initOTLP()
	default:
		return fmt.Errorf("%w: %s", ErrInvalidProvider, t.provider)
	}
}

// initNoop builds a provider with no exporter. Spans are created and
// dropped, so caller code is identical across providers.
func (t *Tracer) initNoop() error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(t.createResource()),
	)
	t.sdkProvider = tp
	t.tracer = tp.Tracer(tracerName)

	t.emit(EventDebug, "tracing provider initialized", "provider", "noop")
	return nil
}

func (t *Tracer) initStdout() error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("creating stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(t.createResource()),
	)
	t.sdkProvider = tp
	t.tracer = tp.Tracer(tracerName)

	t.emit(EventInfo, "tracing initialized",
		"provider", "stdout", "service", t.serviceName)
	return nil
}

func (t *Tracer) initOTLP() error {
	endpoint, insecure := splitEndpoint(t.otlpEndpoint)

	opts := []otlptracehttp.Option{}
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("creating OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(t.createResource()),
	)
	t.sdkProvider = tp
	t.tracer = tp.Tracer(tracerName)

	t.emit(EventInfo, "tracing initialized",
		"provider", "otlp", "endpoint", t.otlpEndpoint, "service", t.serviceName)
	return nil
}

func (t *Tracer) createResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(t.serviceName),
		semconv.ServiceVersion(t.serviceVersion),
	)
}

// splitEndpoint strips the scheme from an endpoint URL and reports whether
// plain HTTP was requested.
func splitEndpoint(raw string) (endpoint string, insecure bool) {
	endpoint = raw
	if strings.HasPrefix(endpoint, "http://") {
		endpoint = strings.TrimPrefix(endpoint, "http://")
		insecure = true
	} else if strings.HasPrefix(endpoint, "https://") {
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return endpoint, insecure
}
