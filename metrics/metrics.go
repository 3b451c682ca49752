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

// Package metrics records per-request HTTP metrics through OpenTelemetry.
//
// Two instruments are maintained: a request counter (http.server.requests)
// and a duration histogram in seconds (http.server.duration), both labeled
// with method, route pattern, and status code. The route label always
// carries the registered pattern rather than the concrete path, so
// cardinality is bounded by the route table.
//
// Three exporters are supported: Prometheus (pull, default), OTLP over
// HTTP (push), and stdout (development). The package never touches the
// global OpenTelemetry meter provider.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies this package's meter within the provider.
const meterName = "vexhttp.dev/metrics"

// DefaultDurationBuckets are histogram boundaries for request duration in
// seconds, covering sub-millisecond to 10 second responses.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Provider selects the metrics exporter.
type Provider string

const (
	// ProviderPrometheus exposes metrics for Prometheus scraping (default).
	ProviderPrometheus Provider = "prometheus"
	// ProviderOTLP pushes metrics to an OTLP HTTP collector.
	ProviderOTLP Provider = "otlp"
	// ProviderStdout prints metrics to stdout. Development only.
	ProviderStdout Provider = "stdout"
)

// EventType classifies internal operational events.
type EventType int

const (
	EventError EventType = iota
	EventWarning
	EventInfo
	EventDebug
)

// Event is an internal operational event (exporter failures, server
// lifecycle). Events are reported through the configured EventHandler so
// the package never writes to a logger it does not own.
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

// Recorder owns the meter provider and the HTTP instruments. All methods
// are safe for concurrent use.
type Recorder struct {
	provider        Provider
	serviceName     string
	serviceVersion  string
	otlpEndpoint    string
	exportInterval  time.Duration
	durationBuckets []float64
	eventHandler    EventHandler

	meterProvider      *sdkmetric.MeterProvider
	meter              metric.Meter
	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler

	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// New creates a Recorder with the given options and initializes the
// configured exporter. The default is the Prometheus provider.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		provider:        ProviderPrometheus,
		serviceName:     "vex",
		serviceVersion:  "unknown",
		exportInterval:  30 * time.Second,
		durationBuckets: DefaultDurationBuckets,
		eventHandler:    func(Event) {},
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}
	return r, nil
}

// MustNew creates a Recorder and panics on initialization failure.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics.MustNew: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	if r.serviceName == "" {
		return ErrEmptyServiceName
	}
	switch r.provider {
	case ProviderPrometheus, ProviderStdout:
	case ProviderOTLP:
		if r.otlpEndpoint == "" {
			r.emit(EventWarning, "OTLP endpoint not specified, using default",
				"default", "http://localhost:4318")
			r.otlpEndpoint = "http://localhost:4318"
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidProvider, r.provider)
	}
	return nil
}

// initializeMetrics creates the HTTP instruments on the meter.
func (r *Recorder) initializeMetrics() error {
	var err error

	r.requestCount, err = r.meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests handled"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("creating request counter: %w", err)
	}

	r.requestDuration, err = r.meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request handling duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	return nil
}

// Handler returns the Prometheus scrape handler. Nil unless the
// Prometheus provider is active.
func (r *Recorder) Handler() http.Handler {
	return r.prometheusHandler
}

// Shutdown flushes and stops the meter provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r.meterProvider == nil {
		return nil
	}
	if err := r.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down meter provider: %w", err)
	}
	return nil
}

func (r *Recorder) emit(t EventType, msg string, args ...any) {
	r.eventHandler(Event{Type: t, Message: msg, Args: args})
}
