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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexhttp/vex/bridge"
	"github.com/vexhttp/vex/router/route"
)

// echoHandler returns a sync handler that echoes its bound args.
func echoHandler() *bridge.HandlerRef {
	return bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "ok", nil
	})
}

func newTestRouter(t *testing.T, opts ...Option) *Router {
	t.Helper()

	rt := bridge.MustNew(bridge.WithTimeout(5 * time.Second))
	t.Cleanup(rt.Close)

	opts = append([]Option{WithRuntime(rt)}, opts...)
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func doRequest(r *Router, method, target string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDispatch_UnmatchedPathIs404(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	require.NoError(t, r.GET("/users", echoHandler()))

	rec := doRequest(r, http.MethodGet, "/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Not Found", rec.Body.String())
}

func TestDispatch_MethodMismatchIs404Not405(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	require.NoError(t, r.GET("/users", echoHandler()))

	rec := doRequest(r, http.MethodPost, "/users", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatch_PathParamsReachHandler(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "user:" + args["username"], nil
	}, "username")
	require.NoError(t, r.GET("/user/<username>", handler))

	rec := doRequest(r, http.MethodGet, "/user/alice", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user:alice", rec.Body.String())
}

func TestDispatch_IntTypeMismatchFallsThroughTo404(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	require.NoError(t, r.GET("/items/<int:id>", echoHandler()))

	rec := doRequest(r, http.MethodGet, "/items/abc", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatch_RegistrationOrderFirstMatchWins(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	specific := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "specific", nil
	})
	general := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "general", nil
	})
	require.NoError(t, r.GET("/users/me", specific))
	require.NoError(t, r.GET("/users/<id>", general))

	rec := doRequest(r, http.MethodGet, "/users/me", "")
	assert.Equal(t, "specific", rec.Body.String())

	rec = doRequest(r, http.MethodGet, "/users/42", "")
	assert.Equal(t, "general", rec.Body.String())
}

func TestDispatch_DuplicateRegistrationLastWins(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	first := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "first", nil
	})
	second := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "second", nil
	})
	require.NoError(t, r.GET("/dup", first))
	require.NoError(t, r.GET("/dup", second))

	rec := doRequest(r, http.MethodGet, "/dup", "")

	assert.Equal(t, "second", rec.Body.String())
}

func TestDispatch_RegistrationAfterFreezePanics(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	require.NoError(t, r.GET("/a", echoHandler()))
	r.Freeze()

	assert.Panics(t, func() {
		_ = r.GET("/b", echoHandler())
	})
	assert.Panics(t, func() {
		r.Use(echoHandler())
	})
}

func TestDispatch_BodyMaterializedBeforeHandler(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "got:" + req.Text(), nil
	})
	require.NoError(t, r.POST("/echo", handler))

	rec := doRequest(r, http.MethodPost, "/echo", "payload")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "got:payload", rec.Body.String())
}

func TestDispatch_HandlerErrorIsGeneric500(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return nil, errors.New("secret database credentials leaked")
	})
	require.NoError(t, r.GET("/boom", handler))

	rec := doRequest(r, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestDispatch_HandlerPanicIsGeneric500(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		panic("handler exploded")
	})
	require.NoError(t, r.GET("/panic", handler))

	rec := doRequest(r, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestDispatch_TimeoutIsGeneric500(t *testing.T) {
	t.Parallel()

	rt := bridge.MustNew(bridge.WithTimeout(50 * time.Millisecond))
	t.Cleanup(rt.Close)
	r := MustNew(WithRuntime(rt))

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		<-release
		return "late", nil
	})
	require.NoError(t, r.GET("/slow", handler))

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doRequest(r, http.MethodGet, "/slow", "")
	}()

	select {
	case rec := <-done:
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete after invocation timeout")
	}
}

func TestDispatch_AsyncHandler(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Async(func(ctx context.Context, req *route.Request, args map[string]string) *bridge.Future {
		f := bridge.NewFuture()
		go func() {
			time.Sleep(10 * time.Millisecond)
			f.Complete("async done")
		}()
		return f
	})
	require.NoError(t, r.GET("/async", handler))

	rec := doRequest(r, http.MethodGet, "/async", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "async done", rec.Body.String())
}

func TestDispatch_AsyncHandlerNeverCompletesIsGeneric500(t *testing.T) {
	t.Parallel()

	rt := bridge.MustNew(bridge.WithTimeout(50 * time.Millisecond))
	t.Cleanup(rt.Close)
	r := MustNew(WithRuntime(rt))

	handler := bridge.Async(func(ctx context.Context, req *route.Request, args map[string]string) *bridge.Future {
		// Never completed; the invocation must time out, not hang.
		return bridge.NewFuture()
	})
	require.NoError(t, r.GET("/stalled", handler))

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doRequest(r, http.MethodGet, "/stalled", "")
	}()

	select {
	case rec := <-done:
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete after invocation timeout")
	}
}

func TestMiddleware_RunsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	r.Use(bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		req.SetHeader("X-Trace", "a")
		return req, nil
	}))
	r.Use(bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		req.SetHeader("X-Trace", req.Header("X-Trace")+"b")
		return req, nil
	}))

	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return req.Header("X-Trace"), nil
	})
	require.NoError(t, r.GET("/traced", handler))

	rec := doRequest(r, http.MethodGet, "/traced", "")

	assert.Equal(t, "ab", rec.Body.String())
}

func TestMiddleware_ResponseShortCircuits(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	r.Use(bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		if req.BearerToken() == "" {
			return route.Text(http.StatusUnauthorized, "missing token"), nil
		}
		return req, nil
	}))

	handlerRan := false
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		handlerRan = true
		return "ok", nil
	})
	require.NoError(t, r.GET("/protected", handler))

	rec := doRequest(r, http.MethodGet, "/protected", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing token", rec.Body.String())
	assert.False(t, handlerRan, "handler must not run after a short-circuit")
}

func TestMiddleware_OtherReturnValueIsIgnored(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	r.Use(bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return 42, nil
	}))
	require.NoError(t, r.GET("/pass", echoHandler()))

	rec := doRequest(r, http.MethodGet, "/pass", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMiddleware_DoesNotRunOnUnmatchedRequests(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	middlewareRan := false
	r.Use(bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		middlewareRan = true
		return req, nil
	}))
	require.NoError(t, r.GET("/exists", echoHandler()))

	rec := doRequest(r, http.MethodGet, "/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, middlewareRan, "middleware must not run for unmatched paths")
}

func TestMiddleware_ErrorIsGeneric500(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	r.Use(bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return nil, errors.New("middleware internals")
	}))
	require.NoError(t, r.GET("/mw", echoHandler()))

	rec := doRequest(r, http.MethodGet, "/mw", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestCoerce_StringIsTextPlain(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	require.NoError(t, r.GET("/text", echoHandler()))

	rec := doRequest(r, http.MethodGet, "/text", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestCoerce_MapIsJSON(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return map[string]any{"status": "ok"}, nil
	})
	require.NoError(t, r.GET("/json", handler))

	rec := doRequest(r, http.MethodGet, "/json", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCoerce_BytesIsOctetStream(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return []byte{0x1, 0x2}, nil
	})
	require.NoError(t, r.GET("/bytes", handler))

	rec := doRequest(r, http.MethodGet, "/bytes", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x1, 0x2}, rec.Body.Bytes())
}

func TestCoerce_ExplicitResponsePassesThrough(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return route.Text(http.StatusTeapot, "short and stout"), nil
	})
	require.NoError(t, r.GET("/teapot", handler))

	rec := doRequest(r, http.MethodGet, "/teapot", "")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestCoerce_UnsupportedReturnTypeIs500(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return struct{ X int }{X: 1}, nil
	})
	require.NoError(t, r.GET("/weird", handler))

	rec := doRequest(r, http.MethodGet, "/weird", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestCoerce_NilReturnIs500(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return nil, nil
	})
	require.NoError(t, r.GET("/nothing", handler))

	rec := doRequest(r, http.MethodGet, "/nothing", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

// stubRenderer renders templates from an in-memory map and fails with a
// fixed error for unknown names.
type stubRenderer struct {
	templates map[string]string
	err       error
}

func (s *stubRenderer) Render(name string, context map[string]any) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	tmpl, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %q", name)
	}
	out := tmpl
	for key, value := range context {
		out = strings.ReplaceAll(out, "{"+key+"}", fmt.Sprint(value))
	}
	return []byte(out), nil
}

func TestTemplateRoute_RendersHandlerMap(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{templates: map[string]string{
		"hello.html": "<h1>Hello {name}</h1>",
	}}
	r := newTestRouter(t, WithRenderer(renderer))

	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return map[string]any{"name": "Vex"}, nil
	})
	require.NoError(t, r.HandleTemplate(http.MethodGet, "/hello", "hello.html", "", handler))

	rec := doRequest(r, http.MethodGet, "/hello", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Hello Vex</h1>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestTemplateRoute_NonMapReturnIs500(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{templates: map[string]string{"x.html": "x"}}
	r := newTestRouter(t, WithRenderer(renderer))

	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return "not a map", nil
	})
	require.NoError(t, r.HandleTemplate(http.MethodGet, "/bad", "x.html", "", handler))

	rec := doRequest(r, http.MethodGet, "/bad", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Template handler must return a map", rec.Body.String())
}

func TestTemplateRoute_RendererErrorSurfacesInBody(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{err: errors.New("parse failed at line 3")}
	r := newTestRouter(t, WithRenderer(renderer))

	handler := bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return map[string]any{}, nil
	})
	require.NoError(t, r.HandleTemplate(http.MethodGet, "/broken", "b.html", "", handler))

	rec := doRequest(r, http.MethodGet, "/broken", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Template rendering error:")
	assert.Contains(t, rec.Body.String(), "parse failed at line 3")
}

func TestTemplateRoute_WithoutRendererFailsRegistration(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	err := r.HandleTemplate(http.MethodGet, "/t", "t.html", "", echoHandler())

	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestRouter_RequiresRuntime(t *testing.T) {
	t.Parallel()

	_, err := New()

	assert.ErrorIs(t, err, ErrNoRuntime)
}

func TestRouter_RejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	err := r.Handle("FETCH", "/x", echoHandler())

	assert.ErrorIs(t, err, ErrPatternInvalid)
}

func TestRouter_RejectsNilHandler(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	err := r.GET("/x", nil)

	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestNoopLogger_Discards(t *testing.T) {
	t.Parallel()

	logger := NoopLogger()

	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
