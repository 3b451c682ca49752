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

import "errors"

var (
	// ErrTimeout indicates that a handler invocation exceeded its budget.
	// The guest task is abandoned; a late completion is logged as orphaned.
	ErrTimeout = errors.New("handler invocation timed out")

	// ErrCanceled indicates that the request was canceled (typically a
	// client disconnect) before the invocation completed.
	ErrCanceled = errors.New("handler invocation canceled")

	// ErrHandlerFailed indicates that the guest handler raised an error or
	// panicked. The underlying detail is attached via wrapping and must only
	// surface in logs, never in HTTP bodies.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrUnsupportedReturn indicates that a handler returned a value the
	// response coercion rules do not recognize.
	ErrUnsupportedReturn = errors.New("unsupported handler return type")

	// ErrBodyRead indicates that reading the request body failed before the
	// handler was entered. Distinct from handler errors.
	ErrBodyRead = errors.New("request body read failed")

	// ErrBinding indicates that a handler declares a parameter name with no
	// corresponding captured path parameter. This is a programming error and
	// is surfaced at startup by the router's pre-flight check.
	ErrBinding = errors.New("handler parameter binding failed")

	// ErrRuntimeClosed indicates an invocation was submitted after Close.
	ErrRuntimeClosed = errors.New("guest runtime closed")
)
