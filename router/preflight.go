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
	"errors"
	"fmt"
)

// Preflight validates the frozen route table before traffic arrives.
//
// It checks, for every route, that each parameter name the handler declares
// is actually captured by the route's pattern. A mismatch is a programming
// error, and surfacing it here aborts startup instead of turning into 500s
// at request time. Template routes are additionally checked for a
// configured renderer.
//
// Preflight freezes the router if it has not been frozen yet. It returns
// all problems found, joined, rather than stopping at the first.
func (r *Router) Preflight() error {
	r.Freeze()

	var errs []error
	for _, rt := range r.snapshot() {
		if err := rt.Handler.CheckBinding(rt.Pattern.ParamNames()); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", rt.Method, rt.Pattern.Template(), err))
		}
		if rt.IsTemplate() && r.renderer == nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", rt.Method, rt.Pattern.Template(), ErrNoRenderer))
		}
	}
	return errors.Join(errs...)
}
