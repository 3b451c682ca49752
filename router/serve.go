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
	"time"
)

// Server timeouts applied by Serve. Conservative defaults that prevent
// slowloris-style resource exhaustion without cutting off slow handlers:
// handler execution is bounded separately by the bridge timeout.
const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

// Serve freezes the route table, runs the pre-flight check, and starts the
// HTTP server on addr. It blocks until the server exits, following the
// stdlib pattern; use Shutdown from another goroutine for graceful exit.
//
// Pre-flight failures (binding mismatches, missing renderer) are returned
// before the listener is opened: they are startup errors, not request
// errors.
func (r *Router) Serve(addr string) error {
	if err := r.Preflight(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	r.logger.Info("server listening", "addr", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server started by Serve without
// interrupting active connections. The context bounds how long to wait;
// when it expires, remaining connections are closed forcefully.
// Returns nil if no server is running.
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMu.Lock()
	srv := r.server
	r.server = nil
	r.serverMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
