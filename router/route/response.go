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
	"net/http"
	"reflect"
)

// Content types inferred from response body values.
const (
	ContentTypeText  = "text/plain; charset=utf-8"
	ContentTypeJSON  = "application/json"
	ContentTypeBytes = "application/octet-stream"
)

// Response is the engine's HTTP response model.
//
// The body and content type are fixed together at construction: when no
// content type is given explicitly, it is inferred once from the concrete
// body value and never changes afterward.
type Response struct {
	Status      int
	ContentType string

	headers   map[string]string
	body      []byte
	setCookie []string
}

// NewResponse builds a Response from an arbitrary body value, inferring the
// content type: string bodies become text/plain, maps and slices are JSON
// serialized, byte slices become application/octet-stream. Anything else,
// nil included, is an unsupported body. Returns an error for unsupported
// bodies and for map or slice bodies that cannot be marshaled.
func NewResponse(status int, body any) (*Response, error) {
	resp := &Response{Status: status, headers: make(map[string]string)}

	switch b := body.(type) {
	case []byte:
		resp.body = b
		resp.ContentType = ContentTypeBytes
	case string:
		resp.body = []byte(b)
		resp.ContentType = ContentTypeText
	default:
		kind := reflect.ValueOf(body).Kind()
		if kind != reflect.Map && kind != reflect.Slice && kind != reflect.Array {
			return nil, fmt.Errorf("unsupported response body type %T", body)
		}
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal response body: %w", err)
		}
		resp.body = encoded
		resp.ContentType = ContentTypeJSON
	}

	return resp, nil
}

// Text builds a plain-text response.
func Text(status int, body string) *Response {
	return &Response{
		Status:      status,
		ContentType: ContentTypeText,
		headers:     make(map[string]string),
		body:        []byte(body),
	}
}

// JSON builds an application/json response. Marshal failures degrade to a
// 500 text response rather than panicking in the request path.
func JSON(status int, body any) *Response {
	encoded, err := json.Marshal(body)
	if err != nil {
		return Text(http.StatusInternalServerError, "Internal Server Error")
	}
	return &Response{
		Status:      status,
		ContentType: ContentTypeJSON,
		headers:     make(map[string]string),
		body:        encoded,
	}
}

// Bytes builds an application/octet-stream response.
func Bytes(status int, body []byte) *Response {
	return &Response{
		Status:      status,
		ContentType: ContentTypeBytes,
		headers:     make(map[string]string),
		body:        body,
	}
}

// WithContentType overrides the content type. Used by template routes where
// the registered route carries an explicit content type.
func (r *Response) WithContentType(ct string) *Response {
	r.ContentType = ct
	return r
}

// Body returns the response body bytes.
func (r *Response) Body() []byte {
	return r.body
}

// Header returns a previously set response header.
func (r *Response) Header(key string) string {
	return r.headers[key]
}

// SetHeader sets a response header.
func (r *Response) SetHeader(key, value string) {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
}

// Headers returns all explicitly set headers. Content-Type and Set-Cookie
// are tracked separately.
func (r *Response) Headers() map[string]string {
	return r.headers
}

// SetCookie appends a Set-Cookie header built from the given cookie.
func (r *Response) SetCookie(c *http.Cookie) {
	r.setCookie = append(r.setCookie, c.String())
}

// DeleteCookie appends a Set-Cookie header that expires the named cookie
// immediately. Path defaults to "/" when empty.
func (r *Response) DeleteCookie(name, path, domain string) {
	if path == "" {
		path = "/"
	}
	c := &http.Cookie{Name: name, Value: "", Path: path, Domain: domain, MaxAge: -1}
	r.setCookie = append(r.setCookie, c.String())
}

// Cookies returns the accumulated Set-Cookie header values.
func (r *Response) Cookies() []string {
	return r.setCookie
}

// Write serializes the response onto the transport's ResponseWriter.
// It is called exactly once per request by the dispatcher.
func (r *Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for key, value := range r.headers {
		h.Set(key, value)
	}
	for _, cookie := range r.setCookie {
		h.Add("Set-Cookie", cookie)
	}
	if r.ContentType != "" {
		h.Set("Content-Type", r.ContentType)
	}

	status := r.Status
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)

	if len(r.body) == 0 {
		return nil
	}
	if _, err := w.Write(r.body); err != nil {
		return fmt.Errorf("write response body: %w", err)
	}
	return nil
}
