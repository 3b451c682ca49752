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
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/vexhttp/vex/bridge"
)

// noopLogger is the singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.DiscardHandler)

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Renderer renders a named template with a context map into bytes.
// Template rendering lives outside the dispatch core; the router only
// depends on this interface. See the render package for the file-based
// implementation.
type Renderer interface {
	Render(name string, context map[string]any) ([]byte, error)
}

// Router is the routing and dispatch engine. It matches requests against
// the registered route table, runs the middleware chain, invokes guest
// handlers through the bridge, and writes the coerced response.
//
// A Router has a two-phase lifecycle: routes and middleware are registered
// during setup, then the table is frozen into an immutable snapshot before
// the first request is served. Registration after freeze panics. Under that
// discipline request handling needs no route-table locking.
//
// Router implements http.Handler; the net/http server is the transport.
type Router struct {
	runtime  *bridge.Runtime
	renderer Renderer
	logger   *slog.Logger

	observability ObservabilityRecorder

	// Registration state, mutated only during the setup phase.
	mu         sync.Mutex
	routes     []*Route
	middleware []*bridge.HandlerRef

	// Frozen snapshots, read on every request.
	frozen          atomic.Bool
	freezeOnce      sync.Once
	routeSnapshot   atomic.Pointer[[]*Route]
	middlewareChain atomic.Pointer[[]*bridge.HandlerRef]

	// Server reference for Shutdown.
	serverMu sync.Mutex
	server   *http.Server
}

// Option configures a Router.
type Option func(*Router)

// WithRuntime sets the guest runtime used for handler and middleware
// invocation. Required.
func WithRuntime(rt *bridge.Runtime) Option {
	return func(r *Router) { r.runtime = rt }
}

// WithRenderer sets the template renderer collaborator. Required only when
// template routes are registered.
func WithRenderer(renderer Renderer) Option {
	return func(r *Router) { r.renderer = renderer }
}

// WithLogger sets the logger for dispatch-path diagnostics. Handler and
// middleware failure detail goes here and never into HTTP bodies.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObservability sets the observability recorder invoked around each
// request. Pass nil to disable spans, metrics, and access logs.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) { r.observability = recorder }
}

// New creates a Router. Returns an error if the configuration is invalid.
// For a version that panics instead, use MustNew.
func New(opts ...Option) (*Router, error) {
	r := &Router{logger: noopLogger}
	for _, opt := range opts {
		opt(r)
	}
	if r.runtime == nil {
		return nil, ErrNoRuntime
	}
	return r, nil
}

// MustNew creates a Router and panics if the configuration is invalid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

// Freeze publishes the immutable route and middleware snapshots and marks
// the router ready for serving. It is called automatically on the first
// request; calling it earlier (after registration) lets startup code run
// Preflight before accepting traffic. Freeze is idempotent.
func (r *Router) Freeze() {
	r.freezeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		routes := make([]*Route, len(r.routes))
		copy(routes, r.routes)
		r.routeSnapshot.Store(&routes)

		chain := make([]*bridge.HandlerRef, len(r.middleware))
		copy(chain, r.middleware)
		r.middlewareChain.Store(&chain)

		r.frozen.Store(true)
	})
}

// snapshot returns the frozen route list. Nil before Freeze.
func (r *Router) snapshot() []*Route {
	p := r.routeSnapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}

// chain returns the frozen middleware list. Nil before Freeze.
func (r *Router) chain() []*bridge.HandlerRef {
	p := r.middlewareChain.Load()
	if p == nil {
		return nil
	}
	return *p
}
