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

// Package semconv defines the field names shared by logs, metrics, and
// traces. Using the same keys everywhere keeps telemetry from the three
// signals correlatable in OpenTelemetry-compatible backends.
package semconv

// Service metadata, set once at logger or provider initialization.
const (
	// ServiceName is the logical service name.
	ServiceName = "service.name"

	// ServiceVersion is the deployed service version.
	ServiceVersion = "service.version"
)

// Per-request HTTP attributes.
const (
	// HTTPMethod is the request method.
	HTTPMethod = "http.method"

	// HTTPRoute is the matched route pattern, never the concrete path.
	// Keeps attribute cardinality bounded by the route table.
	HTTPRoute = "http.route"

	// HTTPTarget is the concrete request path.
	HTTPTarget = "http.target"

	// HTTPStatusCode is the response status code.
	HTTPStatusCode = "http.status_code"

	// HTTPScheme is http or https.
	HTTPScheme = "http.scheme"

	// HTTPUserAgent is the client's User-Agent header value.
	HTTPUserAgent = "http.user_agent"
)

// Trace correlation fields, using the flat names log backends expect.
const (
	// TraceID is the hex trace ID of the active span.
	TraceID = "trace_id"

	// SpanID is the hex span ID of the active span.
	SpanID = "span_id"
)

// Request identification.
const (
	// RequestID is the per-request correlation ID.
	RequestID = "req.id"
)
