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

package bridge

import (
	"context"
	"fmt"

	"github.com/vexhttp/vex/router/route"
)

// SyncFunc is a synchronous guest callable. It runs on the runtime's gate
// goroutine, so it may freely touch guest state that requires execution
// exclusivity. The args map carries the path parameters the handler declared,
// bound by name.
//
// The returned value is coerced into a Response by the dispatcher.
type SyncFunc func(ctx context.Context, req *route.Request, args map[string]string) (any, error)

// AsyncFunc is an asynchronous guest callable. It is entered on the gate
// goroutine and must return a Future promptly; the guest work it schedules
// completes the Future later. The gate is released as soon as the Future is
// returned, so a slow async handler never blocks other invocations.
type AsyncFunc func(ctx context.Context, req *route.Request, args map[string]string) *Future

// HandlerRef is an opaque reference to a guest callable plus its declared
// parameter names. Whether the callable is synchronous or asynchronous is
// resolved once at registration time, not per request.
type HandlerRef struct {
	sync   SyncFunc
	async  AsyncFunc
	params []string
}

// Sync builds a HandlerRef for a synchronous callable. The params are the
// path parameter names the handler declares beyond the implicit request.
func Sync(fn SyncFunc, params ...string) *HandlerRef {
	return &HandlerRef{sync: fn, params: params}
}

// Async builds a HandlerRef for an asynchronous callable.
func Async(fn AsyncFunc, params ...string) *HandlerRef {
	return &HandlerRef{async: fn, params: params}
}

// IsAsync reports whether the referenced callable is asynchronous.
func (h *HandlerRef) IsAsync() bool {
	return h.async != nil
}

// Params returns the declared parameter names.
func (h *HandlerRef) Params() []string {
	return h.params
}

// Bind resolves the declared parameter names against captured path
// parameters. Every declared name must have a captured value; a missing name
// is an ErrBinding, raised before the handler is entered.
func (h *HandlerRef) Bind(pathParams map[string]string) (map[string]string, error) {
	if len(h.params) == 0 {
		return nil, nil
	}
	args := make(map[string]string, len(h.params))
	for _, name := range h.params {
		value, ok := pathParams[name]
		if !ok {
			return nil, fmt.Errorf("%w: no captured path parameter %q", ErrBinding, name)
		}
		args[name] = value
	}
	return args, nil
}

// CheckBinding verifies that every declared parameter name appears in the
// given pattern parameter set. Used by the router's pre-flight check so that
// binding mistakes abort startup instead of producing request-time 500s.
func (h *HandlerRef) CheckBinding(patternParams map[string]bool) error {
	for _, name := range h.params {
		if !patternParams[name] {
			return fmt.Errorf("%w: handler declares %q but the route pattern does not capture it", ErrBinding, name)
		}
	}
	return nil
}
