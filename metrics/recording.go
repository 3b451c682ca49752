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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics carries the timing state for one in-flight request
// between Start and Finish.
type RequestMetrics struct {
	StartTime time.Time
}

// Start begins timing a request. Call Finish with the returned value when
// the response has been written.
func (r *Recorder) Start(ctx context.Context) *RequestMetrics {
	return &RequestMetrics{StartTime: time.Now()}
}

// Finish records the counter increment and the duration observation for a
// completed request. The route is the registered pattern, never the
// concrete path. A nil m is ignored.
func (r *Recorder) Finish(ctx context.Context, m *RequestMetrics, method, route string, status int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("service.name", r.serviceName),
		attribute.String("service.version", r.serviceVersion),
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	r.requestCount.Add(ctx, 1, attrs)
	r.requestDuration.Record(ctx, time.Since(m.StartTime).Seconds(), attrs)
}
