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
	"errors"
	"fmt"
	"net/http"

	"github.com/vexhttp/vex/bridge"
	"github.com/vexhttp/vex/router/route"
)

// genericServerError is the body for every per-request failure whose detail
// must stay out of HTTP responses. Renderer errors are the one documented
// exception; see coerce.go.
const genericServerError = "Internal Server Error"

// ServeHTTP implements http.Handler. It drives one request through the
// dispatch sequence:
//
//	Received → Matched|NotFound → MiddlewareRun → (ShortCircuited|Invoking) → Responded
//
// Every entry path reaches Responded exactly once: all per-request errors
// are converted into a Response here and nothing propagates to the
// transport as a panic or a dropped connection.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Auto-freeze on first request: configuration and serving are mutually
	// exclusive phases, so in-flight matching never observes a partially
	// updated table.
	r.Freeze()

	ctx := req.Context()
	var obsState any
	if r.observability != nil {
		enriched, state := r.observability.OnRequestStart(ctx, req)
		if enriched != ctx {
			ctx = enriched
			req = req.WithContext(ctx)
		}
		obsState = state
	}

	resp, pattern := r.dispatch(ctx, req)

	if err := resp.Write(w); err != nil {
		// The client likely disconnected mid-write. Nothing to send anymore;
		// record and move on.
		r.logger.Warn("response write failed",
			"method", req.Method, "route", pattern, "error", err)
	}

	if r.observability != nil && obsState != nil {
		r.observability.OnRequestEnd(ctx, obsState, resp.Status, pattern)
	}
}

// dispatch produces the response and the route label for one request.
func (r *Router) dispatch(ctx context.Context, httpReq *http.Request) (*route.Response, string) {
	request := route.FromHTTP(httpReq)

	// Received → Matched | NotFound.
	// A method mismatch on an otherwise matching path is also a 404: the
	// engine deliberately does not distinguish 405.
	matched, params := r.match(request.Method, request.Path)
	if matched == nil {
		r.logger.Debug("no route matched", "method", request.Method, "path", request.Path)
		return route.Text(http.StatusNotFound, "404 Not Found"), RoutePatternNotFound
	}
	request.PathParams = params
	pattern := matched.Pattern.Template()

	// Body materialization precedes middleware and handler: methods that
	// carry a body get it read to completion here, the request's body-I/O
	// suspension point. Read failures are distinct from handler failures.
	if methodHasBody(request.Method) {
		if _, err := request.ReadBody(); err != nil {
			r.logger.Error("request body read failed",
				"method", request.Method, "route", pattern,
				"error", fmt.Errorf("%w: %v", bridge.ErrBodyRead, err))
			return route.Text(http.StatusInternalServerError, genericServerError), pattern
		}
	}

	// MiddlewareRun → ShortCircuited | Invoking.
	current := request
	for _, mw := range r.chain() {
		result, err := r.runMiddleware(ctx, mw, current)
		if err != nil {
			// Fatal for this request: generic body, detail only in logs.
			r.logger.Error("middleware failed",
				"method", request.Method, "route", pattern, "error", err)
			return route.Text(http.StatusInternalServerError, genericServerError), pattern
		}
		if result.ShortCircuited() {
			return result.Response, pattern
		}
		current = result.Request
	}

	// Invoking.
	value, err := r.runtime.Invoke(ctx, matched.Handler, current)
	if err != nil {
		return r.invocationFailure(request.Method, pattern, err), pattern
	}

	resp := r.coerce(value, matched, pattern)
	return resp, pattern
}

// runMiddleware invokes one middleware through the bridge and folds its
// return value into a MiddlewareResult: a Response short-circuits, a
// Request continues the chain mutated, anything else continues unchanged.
func (r *Router) runMiddleware(ctx context.Context, mw *bridge.HandlerRef, request *route.Request) (route.MiddlewareResult, error) {
	value, err := r.runtime.Invoke(ctx, mw, request)
	if err != nil {
		return route.MiddlewareResult{}, err
	}
	switch v := value.(type) {
	case *route.Response:
		return route.ShortCircuit(v), nil
	case *route.Request:
		return route.Continue(v), nil
	default:
		return route.Continue(request), nil
	}
}

// invocationFailure maps a bridge error onto the 500 response, logging the
// taxonomy kind so operators can tell timeouts from handler failures.
func (r *Router) invocationFailure(method, pattern string, err error) *route.Response {
	switch {
	case errors.Is(err, bridge.ErrTimeout):
		r.logger.Error("handler invocation timed out", "method", method, "route", pattern)
	case errors.Is(err, bridge.ErrCanceled):
		r.logger.Warn("handler invocation canceled", "method", method, "route", pattern, "error", err)
	case errors.Is(err, bridge.ErrBinding):
		// Reachable only when Preflight was skipped.
		r.logger.Error("handler parameter binding failed", "method", method, "route", pattern, "error", err)
	default:
		r.logger.Error("handler failed", "method", method, "route", pattern, "error", err)
	}
	return route.Text(http.StatusInternalServerError, genericServerError)
}

// methodHasBody reports whether the engine materializes a request body for
// the method before handler invocation.
func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
