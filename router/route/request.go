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

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is the dispatch engine's view of one inbound HTTP request.
//
// A Request is created once per inbound request by the transport layer and
// is exclusively owned by the dispatcher for the duration of that request.
// It must never be retained beyond the request's call stack or shared across
// concurrent requests. Middleware may mutate it in place before the handler
// runs.
type Request struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string

	// Path is the decoded request path without the query string.
	Path string

	// PathParams holds parameters captured by the pattern matcher.
	// It is empty until the request has been matched against a route.
	PathParams map[string]string

	headers http.Header
	query   map[string]string
	cookies map[string]string

	body      io.ReadCloser
	bodyBytes []byte
	bodyRead  bool
}

// FromHTTP builds a Request from the transport's http.Request.
// Query parameters are flattened with last-value-wins semantics for
// duplicate keys. Cookies are parsed from the Cookie header.
func FromHTTP(r *http.Request) *Request {
	query := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[len(values)-1]
		}
	}

	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}

	return &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		PathParams: make(map[string]string),
		headers:    r.Header,
		query:      query,
		cookies:    cookies,
		body:       r.Body,
	}
}

// NewRequest builds a Request directly, primarily for tests and for
// middleware that replaces the in-flight request wholesale.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:     method,
		Path:       path,
		PathParams: make(map[string]string),
		headers:    make(http.Header),
		query:      make(map[string]string),
		cookies:    make(map[string]string),
	}
}

// Header returns the value of the named header. Lookup is case-insensitive.
func (r *Request) Header(key string) string {
	if r.headers == nil {
		return ""
	}
	return r.headers.Get(key)
}

// SetHeader sets a header on the request. Middleware uses this to annotate
// requests before they reach the handler.
func (r *Request) SetHeader(key, value string) {
	if r.headers == nil {
		r.headers = make(http.Header)
	}
	r.headers.Set(key, value)
}

// Query returns the value of the named query parameter, or "" if absent.
// When a key appears multiple times in the query string, the last value wins.
func (r *Request) Query(key string) string {
	return r.query[key]
}

// QueryParams returns all query parameters.
func (r *Request) QueryParams() map[string]string {
	return r.query
}

// Cookie returns the value of the named cookie and whether it was present.
func (r *Request) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok
}

// SetCookie records a cookie value on the request for downstream middleware
// and handlers to observe.
func (r *Request) SetCookie(name, value string) {
	if r.cookies == nil {
		r.cookies = make(map[string]string)
	}
	r.cookies[name] = value
}

// BearerToken extracts the token from a "Bearer" Authorization header.
// Returns "" if the header is absent or uses a different scheme.
func (r *Request) BearerToken() string {
	auth := r.Header("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

// SetBearerToken sets the Authorization header to a Bearer token.
func (r *Request) SetBearerToken(token string) {
	r.SetHeader("Authorization", "Bearer "+token)
}

// ReadBody drains the underlying body stream into memory and returns the
// bytes. The first call performs the read; subsequent calls return the
// cached bytes. The dispatcher calls this before handler invocation for
// methods that carry a body, so reading here is the request's suspension
// point for body I/O.
func (r *Request) ReadBody() ([]byte, error) {
	if r.bodyRead {
		return r.bodyBytes, nil
	}
	r.bodyRead = true
	if r.body == nil {
		return nil, nil
	}
	defer r.body.Close()

	b, err := io.ReadAll(r.body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	r.bodyBytes = b
	return b, nil
}

// Body returns the materialized body bytes. It is nil until ReadBody has
// been called; handlers invoked through the dispatcher can rely on the body
// already being materialized for POST, PUT, PATCH, and DELETE requests.
func (r *Request) Body() []byte {
	return r.bodyBytes
}

// SetBody replaces the materialized body. Used by tests and by middleware
// that rewrites the request payload.
func (r *Request) SetBody(b []byte) {
	r.bodyBytes = b
	r.bodyRead = true
}

// JSON unmarshals the materialized body into v.
func (r *Request) JSON(v any) error {
	if err := json.Unmarshal(r.bodyBytes, v); err != nil {
		return fmt.Errorf("parse request body as JSON: %w", err)
	}
	return nil
}

// Text returns the materialized body as a string.
func (r *Request) Text() string {
	return string(r.bodyBytes)
}
