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

// Package bridge invokes guest-runtime handlers from request goroutines.
//
// The guest runtime is assumed to have a global execution exclusivity
// constraint: only one goroutine may run guest code at a time, like an
// interpreter with a global lock. The bridge reconciles that with the host's
// many concurrent request goroutines through a single dedicated gate
// goroutine that owns all guest entry. Requests suspend on channel selects
// while waiting, so the transport keeps servicing other connections.
//
// Handlers are referenced through HandlerRef, a tagged variant resolved at
// registration time: synchronous callables run to completion on the gate,
// asynchronous callables return a Future the request goroutine awaits.
// Every invocation is bounded by a timeout; timed-out guest work is
// abandoned and its late completion logged, never delivered.
package bridge
