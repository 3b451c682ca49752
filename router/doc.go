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

// Package router provides the HTTP routing and dispatch engine.
//
// The router matches incoming requests against a registered route table,
// runs the middleware chain, invokes handlers through a guest runtime
// bridge, and coerces whatever the handler returned into an HTTP response.
//
// # Route Patterns
//
// Patterns are slash-separated templates with typed parameter segments:
//
//   - /users: static, exact match
//   - /users/<id>: captures one segment as a string
//   - /users/<int:id>: captures one segment, integer-shaped values only
//   - /static/<filepath:path>: captures the remainder, slashes included
//
// Routes match in registration order; the first pattern that matches wins.
// Registering the same method and pattern twice replaces the earlier route
// in place. A path-typed parameter must be the final segment.
//
// # Lifecycle
//
// A Router has two phases. During setup, routes and middleware are
// registered with GET, POST, Use, and friends. Serving freezes the table
// into an immutable snapshot; registration after freeze panics. Freeze
// happens automatically on the first request, or explicitly so that
// Preflight can validate handler parameter bindings before the listener
// opens:
//
//	r := router.MustNew(router.WithRuntime(rt))
//	r.GET("/users/<int:id>", bridge.Sync(getUser, "id"))
//	if err := r.Serve(":8080"); err != nil {
//		log.Fatal(err)
//	}
//
// # Dispatch Semantics
//
// Middleware runs before the handler, in registration order, on every
// matched request. A middleware that returns a Response short-circuits the
// chain and the handler; one that returns a Request replaces the request
// seen downstream; any other return value is ignored and the chain
// continues. Unmatched paths and method mismatches both produce 404; the
// engine does not distinguish 405.
//
// Handler and middleware failures never leak internals into HTTP bodies:
// clients get a generic 500 and detail goes to the configured logger.
// Template rendering errors are the one documented exception.
package router
