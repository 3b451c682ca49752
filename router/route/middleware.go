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

package route

// MiddlewareResult is the outcome of one middleware invocation: either the
// chain continues with a (possibly mutated) request, or it short-circuits
// with a concrete response.
//
// Exactly one of Request and Response is non-nil.
type MiddlewareResult struct {
	Request  *Request
	Response *Response
}

// Continue produces a result that passes the given request to the next
// middleware, or to the route handler if this was the last one.
func Continue(r *Request) MiddlewareResult {
	return MiddlewareResult{Request: r}
}

// ShortCircuit produces a result that halts the chain immediately. No later
// middleware and no route handler runs; the response is sent as-is.
func ShortCircuit(resp *Response) MiddlewareResult {
	return MiddlewareResult{Response: resp}
}

// ShortCircuited reports whether the chain was halted.
func (m MiddlewareResult) ShortCircuited() bool {
	return m.Response != nil
}
