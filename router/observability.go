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

package router

import (
	"context"
	"net/http"
)

// RoutePatternNotFound is the route label reported for requests that
// matched no route. Using a sentinel instead of the raw path keeps metric
// and span cardinality bounded.
const RoutePatternNotFound = "_not_found"

// ObservabilityRecorder provides unified observability lifecycle hooks
// around each dispatched request. Implementations typically combine span
// creation, a request counter and duration histogram, and an access log
// line.
//
// Lifecycle:
//  1. The dispatcher calls OnRequestStart(ctx, req) before matching and
//     always adopts the returned context (trace propagation applies even to
//     requests the recorder chooses to exclude).
//  2. If the returned state is nil the request is excluded: OnRequestEnd is
//     not called.
//  3. After the response is written the dispatcher calls OnRequestEnd with
//     the final status and the matched route pattern (never the concrete
//     path, so label cardinality stays bounded).
//
// Recorders must never block the request path on export I/O; emission is
// best-effort. All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnRequestEnd(ctx context.Context, state any, status int, routePattern string)
}
