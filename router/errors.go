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

import "errors"

var (
	// ErrPatternInvalid indicates a route template that failed to compile.
	// Raised at registration time; fatal at startup.
	ErrPatternInvalid = errors.New("invalid route pattern")

	// ErrRoutesFrozen indicates route registration after the table was
	// frozen for serving. Configuration and serving are mutually exclusive
	// phases.
	ErrRoutesFrozen = errors.New("routes are frozen")

	// ErrNilHandler indicates a route registered without a handler.
	ErrNilHandler = errors.New("route handler must not be nil")

	// ErrNoRuntime indicates the router was built without a guest runtime.
	ErrNoRuntime = errors.New("router requires a guest runtime")

	// ErrNoRenderer indicates a template route was registered but no
	// renderer is configured.
	ErrNoRenderer = errors.New("template routes require a renderer")
)
