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

import "time"

// Option configures a Recorder.
type Option func(*Recorder)

// WithPrometheus selects the Prometheus pull exporter (default).
func WithPrometheus() Option {
	return func(r *Recorder) { r.provider = ProviderPrometheus }
}

// WithOTLP selects the OTLP HTTP push exporter. The endpoint accepts a
// full URL; an http:// scheme implies an insecure connection.
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = ProviderOTLP
		r.otlpEndpoint = endpoint
	}
}

// WithStdout selects the stdout exporter. Development only.
func WithStdout() Option {
	return func(r *Recorder) { r.provider = ProviderStdout }
}

// WithServiceName sets the service name attached to every measurement.
func WithServiceName(name string) Option {
	return func(r *Recorder) { r.serviceName = name }
}

// WithServiceVersion sets the service version attached to every measurement.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) { r.serviceVersion = version }
}

// WithExportInterval sets the push interval for OTLP and stdout providers.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		if interval > 0 {
			r.exportInterval = interval
		}
	}
}

// WithDurationBuckets replaces the duration histogram boundaries.
func WithDurationBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.durationBuckets = buckets
		}
	}
}

// WithEventHandler sets the handler for internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(r *Recorder) {
		if handler != nil {
			r.eventHandler = handler
		}
	}
}
