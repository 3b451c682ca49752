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
	"net/http"

	"github.com/vexhttp/vex/bridge"
)

// Route binds one (method, pattern) pair to a guest handler.
type Route struct {
	Method  string
	Pattern *CompiledPattern
	Handler *bridge.HandlerRef

	// Template routes render the handler's returned map through the
	// configured Renderer instead of coercing it directly.
	TemplateName string
	ContentType  string
}

// IsTemplate reports whether the route renders through a template.
func (rt *Route) IsTemplate() bool {
	return rt.TemplateName != ""
}

// Handle registers a route. The template is compiled immediately; a bad
// template is returned as a compile error and should abort startup.
//
// Registering the same (method, pattern) pair twice replaces the earlier
// binding: last registration wins. Route evaluation order is otherwise the
// registration order, and more specific patterns must be registered before
// more general ones; the engine never reorders for specificity.
//
// Handle panics if called after the route table is frozen.
func (r *Router) Handle(method, template string, ref *bridge.HandlerRef) error {
	return r.register(&routeSpec{method: method, template: template, ref: ref})
}

// HandleTemplate registers a template route. The handler must return a map,
// which is rendered through the configured Renderer with the given template
// name; contentType overrides the response content type.
func (r *Router) HandleTemplate(method, template, templateName, contentType string, ref *bridge.HandlerRef) error {
	if r.renderer == nil {
		return ErrNoRenderer
	}
	if templateName == "" {
		return fmt.Errorf("%w: empty template name for %s %s", ErrPatternInvalid, method, template)
	}
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	return r.register(&routeSpec{
		method:       method,
		template:     template,
		ref:          ref,
		templateName: templateName,
		contentType:  contentType,
	})
}

// GET registers a GET route.
func (r *Router) GET(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodGet, template, ref)
}

// POST registers a POST route.
func (r *Router) POST(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodPost, template, ref)
}

// PUT registers a PUT route.
func (r *Router) PUT(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodPut, template, ref)
}

// PATCH registers a PATCH route.
func (r *Router) PATCH(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodPatch, template, ref)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodDelete, template, ref)
}

// HEAD registers a HEAD route.
func (r *Router) HEAD(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodHead, template, ref)
}

// OPTIONS registers an OPTIONS route.
func (r *Router) OPTIONS(template string, ref *bridge.HandlerRef) error {
	return r.Handle(http.MethodOptions, template, ref)
}

// Use appends a middleware to the chain. Middleware executes in
// registration order on every dispatched request until one short-circuits.
// Use panics if called after the route table is frozen.
func (r *Router) Use(ref *bridge.HandlerRef) {
	if ref == nil {
		panic("router.Use: nil middleware")
	}
	if r.frozen.Load() {
		panic(fmt.Sprintf("router.Use: %v", ErrRoutesFrozen))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, ref)
}

type routeSpec struct {
	method       string
	template     string
	ref          *bridge.HandlerRef
	templateName string
	contentType  string
}

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

func (r *Router) register(spec *routeSpec) error {
	if r.frozen.Load() {
		panic(fmt.Sprintf("router: cannot register %s %s: %v", spec.method, spec.template, ErrRoutesFrozen))
	}
	if spec.ref == nil {
		return fmt.Errorf("%w: %s %s", ErrNilHandler, spec.method, spec.template)
	}
	if !knownMethods[spec.method] {
		return fmt.Errorf("%w: unknown method %q", ErrPatternInvalid, spec.method)
	}

	pattern, err := Compile(spec.template)
	if err != nil {
		return err
	}

	rt := &Route{
		Method:       spec.method,
		Pattern:      pattern,
		Handler:      spec.ref,
		TemplateName: spec.templateName,
		ContentType:  spec.contentType,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Last registration wins: a duplicate (method, pattern) replaces the
	// earlier binding in place, keeping its original evaluation position.
	for i, existing := range r.routes {
		if existing.Method == rt.Method && existing.Pattern.Template() == rt.Pattern.Template() {
			r.routes[i] = rt
			return nil
		}
	}
	r.routes = append(r.routes, rt)
	return nil
}

// match evaluates the frozen route table in registration order and returns
// the first route whose method and pattern both match, along with the
// captured path parameters. Matching is read-only and lock-free.
func (r *Router) match(method, path string) (*Route, map[string]string) {
	for _, rt := range r.snapshot() {
		if rt.Method != method {
			continue
		}
		if params, ok := rt.Pattern.Match(path); ok {
			return rt, params
		}
	}
	return nil, nil
}

// Routes returns the frozen route table for introspection and pre-flight
// checks. Nil before Freeze.
func (r *Router) Routes() []*Route {
	return r.snapshot()
}
