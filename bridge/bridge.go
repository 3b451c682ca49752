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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vexhttp/vex/router/route"
)

const (
	// DefaultTimeout bounds a single handler invocation, including queueing
	// for the gate and, for async handlers, awaiting the future.
	DefaultTimeout = 30 * time.Second

	// DefaultQueueSize bounds the number of invocations waiting for the
	// gate. Submissions beyond this suspend until a slot frees or the
	// invocation budget expires.
	DefaultQueueSize = 64
)

// Runtime is the bridge into the guest runtime: a dedicated goroutine (the
// "call gate") owns all guest execution, serializing entry the way a
// single-threaded interpreter requires, while request goroutines suspend on
// channel selects instead of blocking the transport.
//
// Synchronous callables run to completion on the gate goroutine.
// Asynchronous callables are entered on the gate goroutine but return a
// Future immediately; the gate moves on while the future resolves, and the
// submitting request goroutine awaits resolution or its timeout.
//
// A Runtime is safe for concurrent use by any number of request goroutines.
type Runtime struct {
	queue   chan *call
	stop    chan struct{}
	timeout time.Duration
	logger  *slog.Logger

	queueSize int
	closed    atomic.Bool
	closeOnce sync.Once
	loopDone  chan struct{}
}

type call struct {
	ctx  context.Context
	ref  *HandlerRef
	req  *route.Request
	args map[string]string

	done      chan callResult // buffered(1) so delivery never blocks the gate
	abandoned atomic.Bool
	enqueued  time.Time
}

type callResult struct {
	value any
	err   error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the per-invocation budget. Must be positive.
func WithTimeout(d time.Duration) Option {
	return func(rt *Runtime) { rt.timeout = d }
}

// WithQueueSize sets the bounded submission queue capacity. Must be positive.
func WithQueueSize(n int) Option {
	return func(rt *Runtime) { rt.queueSize = n }
}

// WithLogger sets the logger used for orphaned completions and gate
// diagnostics. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) { rt.logger = logger }
}

// New creates a Runtime and starts its gate goroutine.
// Returns an error if the configuration is invalid.
func New(opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		timeout:   DefaultTimeout,
		queueSize: DefaultQueueSize,
		logger:    slog.New(slog.DiscardHandler),
		stop:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rt)
	}

	if rt.timeout <= 0 {
		return nil, fmt.Errorf("bridge: timeout must be positive, got %v", rt.timeout)
	}
	if rt.queueSize <= 0 {
		return nil, fmt.Errorf("bridge: queue size must be positive, got %d", rt.queueSize)
	}

	rt.queue = make(chan *call, rt.queueSize)
	go rt.gate()

	return rt, nil
}

// MustNew creates a Runtime and panics on invalid configuration.
func MustNew(opts ...Option) *Runtime {
	rt, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("bridge.MustNew: %v", err))
	}
	return rt
}

// Timeout returns the configured per-invocation budget.
func (rt *Runtime) Timeout() time.Duration {
	return rt.timeout
}

// Invoke submits the referenced handler for the given request and suspends
// until it completes, the budget expires, or ctx is canceled.
//
// Argument binding happens before submission: a declared parameter with no
// captured path parameter returns ErrBinding without entering guest code.
// On timeout the guest task is abandoned, not interrupted; its eventual
// completion is discarded and logged as orphaned.
func (rt *Runtime) Invoke(ctx context.Context, ref *HandlerRef, req *route.Request) (any, error) {
	if rt.closed.Load() {
		return nil, ErrRuntimeClosed
	}

	args, err := ref.Bind(req.PathParams)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, rt.timeout)
	defer cancel()

	c := &call{
		ctx:      ctx,
		ref:      ref,
		req:      req,
		args:     args,
		done:     make(chan callResult, 1),
		enqueued: time.Now(),
	}

	select {
	case rt.queue <- c:
	case <-rt.stop:
		return nil, ErrRuntimeClosed
	case <-ctx.Done():
		return nil, rt.deadlineError(ctx, c)
	}

	select {
	case res := <-c.done:
		return res.value, res.err
	case <-rt.stop:
		c.abandoned.Store(true)
		return nil, ErrRuntimeClosed
	case <-ctx.Done():
		return nil, rt.deadlineError(ctx, c)
	}
}

// deadlineError marks the call abandoned and maps context termination onto
// the bridge error taxonomy.
func (rt *Runtime) deadlineError(ctx context.Context, c *call) error {
	c.abandoned.Store(true)
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCanceled, context.Cause(ctx))
	}
	return ErrTimeout
}

// Close stops the gate. In-flight and queued invocations return
// ErrRuntimeClosed. Close is idempotent.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		rt.closed.Store(true)
		close(rt.stop)
		<-rt.loopDone
	})
}

// gate is the single consumer that owns all guest execution.
func (rt *Runtime) gate() {
	defer close(rt.loopDone)
	for {
		select {
		case <-rt.stop:
			return
		case c := <-rt.queue:
			rt.execute(c)
		}
	}
}

// execute runs one call on the gate goroutine. Sync callables hold the gate
// for their full duration; async callables hold it only until they return a
// Future.
func (rt *Runtime) execute(c *call) {
	if c.abandoned.Load() {
		// The invoker gave up while this call sat in the queue. Do not enter
		// guest code for a request nobody is waiting on.
		rt.logger.Warn("dropping abandoned invocation before guest entry",
			"queued_for", time.Since(c.enqueued))
		return
	}

	if c.ref.IsAsync() {
		future, err := rt.enterAsync(c)
		if err != nil {
			rt.deliver(c, nil, err)
			return
		}
		// Release the gate; a watcher goroutine relays the resolution. The
		// watcher never runs guest code, so it is safe outside the gate.
		go func() {
			<-future.Done()
			value, err := future.Result()
			if err != nil {
				err = fmt.Errorf("%w: %v", ErrHandlerFailed, err)
			}
			rt.deliver(c, value, err)
		}()
		return
	}

	value, err := rt.enterSync(c)
	rt.deliver(c, value, err)
}

// enterSync runs a synchronous callable, converting panics and errors into
// ErrHandlerFailed so guest failures never unwind into the gate loop.
func (rt *Runtime) enterSync(c *call) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: panic: %v", ErrHandlerFailed, r)
		}
	}()

	value, callErr := c.ref.sync(c.ctx, c.req, c.args)
	if callErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandlerFailed, callErr)
	}
	return value, nil
}

// enterAsync enters an asynchronous callable and returns its Future.
// A nil Future or a panic during entry is a handler failure.
func (rt *Runtime) enterAsync(c *call) (future *Future, err error) {
	defer func() {
		if r := recover(); r != nil {
			future = nil
			err = fmt.Errorf("%w: panic: %v", ErrHandlerFailed, r)
		}
	}()

	future = c.ref.async(c.ctx, c.req, c.args)
	if future == nil {
		return nil, fmt.Errorf("%w: async handler returned nil future", ErrHandlerFailed)
	}
	return future, nil
}

// deliver hands the result back to the waiting invoker, or logs an orphaned
// completion if the invoker already moved on.
func (rt *Runtime) deliver(c *call, value any, err error) {
	if c.abandoned.Load() {
		rt.logger.Warn("orphaned guest completion discarded",
			"error", err,
			"elapsed", time.Since(c.enqueued))
		return
	}
	c.done <- callResult{value: value, err: err}
}
