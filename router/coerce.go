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
	"github.com/vexhttp/vex/router/route"
)

// coerce converts a handler's returned value into a Response.
//
// Coercion order: template routes first (their handlers must return a map,
// rendered through the Renderer), then *route.Response as-is, string →
// text/plain, map/slice → JSON, []byte → octet-stream. Anything else is an
// unsupported return type and yields a generic 500.
//
// Renderer errors are the one documented exception to the
// no-internals-in-bodies rule: their message is embedded in the 500 body.
func (r *Router) coerce(value any, rt *Route, pattern string) *route.Response {
	if rt.IsTemplate() {
		return r.renderTemplate(value, rt, pattern)
	}

	switch v := value.(type) {
	case *route.Response:
		return v
	case string:
		return route.Text(http.StatusOK, v)
	case []byte:
		return route.Bytes(http.StatusOK, v)
	default:
		resp, err := route.NewResponse(http.StatusOK, v)
		if err != nil {
			r.logger.Error("unsupported handler return type",
				"route", pattern, "type", fmt.Sprintf("%T", value),
				"error", bridge.ErrUnsupportedReturn)
			return route.Text(http.StatusInternalServerError, genericServerError)
		}
		return resp
	}
}

// renderTemplate renders a template route's handler result. The handler
// must return a map; the map becomes the template context.
func (r *Router) renderTemplate(value any, rt *Route, pattern string) *route.Response {
	context, ok := templateContext(value)
	if !ok {
		r.logger.Error("template handler must return a map",
			"route", pattern, "template", rt.TemplateName, "type", fmt.Sprintf("%T", value))
		return route.Text(http.StatusInternalServerError, "Template handler must return a map")
	}

	rendered, err := r.renderer.Render(rt.TemplateName, context)
	if err != nil {
		r.logger.Error("template rendering failed",
			"route", pattern, "template", rt.TemplateName, "error", err)
		return route.Text(http.StatusInternalServerError,
			fmt.Sprintf("Template rendering error: %v", err))
	}

	return route.Bytes(http.StatusOK, rendered).WithContentType(rt.ContentType)
}

// templateContext normalizes the map shapes handlers realistically return.
func templateContext(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		ctx := make(map[string]any, len(v))
		for key, val := range v {
			ctx[key] = val
		}
		return ctx, true
	default:
		return nil, false
	}
}
