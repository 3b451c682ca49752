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

package metrics

import (
	"context"
	"fmt"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func (r *Recorder) initializeProvider() error {
	switch r.provider {
	case ProviderPrometheus:
		return r.initPrometheus()
	case ProviderOTLP:
		return r.initOTLP()
	case ProviderStdout:
		return r.initStdout()
	default:
		return fmt.Errorf("%w: %s", ErrInvalidProvider, r.provider)
	}
}

// initPrometheus sets up a pull-based exporter on a private registry.
// A private registry avoids collisions with any global Prometheus state
// in the host process.
func (r *Recorder) initPrometheus() error {
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(
		prometheus.WithRegisterer(r.prometheusRegistry),
	)
	if err != nil {
		return fmt.Errorf("creating Prometheus exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	r.prometheusHandler = promhttp.HandlerFor(
		r.prometheusRegistry,
		promhttp.HandlerOpts{},
	)
	r.meter = r.meterProvider.Meter(meterName)

	r.emit(EventDebug, "metrics provider initialized", "provider", "prometheus")
	return r.initializeMetrics()
}

func (r *Recorder) initOTLP() error {
	endpoint, insecure := splitEndpoint(r.otlpEndpoint)

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("creating OTLP exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(r.exportInterval),
		)),
	)
	r.meter = r.meterProvider.Meter(meterName)

	r.emit(EventDebug, "metrics provider initialized",
		"provider", "otlp", "endpoint", r.otlpEndpoint)
	return r.initializeMetrics()
}

func (r *Recorder) initStdout() error {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("creating stdout exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(r.exportInterval),
		)),
	)
	r.meter = r.meterProvider.Meter(meterName)

	r.emit(EventDebug, "metrics provider initialized", "provider", "stdout")
	return r.initializeMetrics()
}

// splitEndpoint strips the scheme from an endpoint URL and reports whether
// plain HTTP was requested. The OTLP HTTP exporter wants host:port plus a
// separate insecure flag.
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
