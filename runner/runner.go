/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package runner gives every long-lived component in this module (servers,
// sweeps, pools) the same small start/stop lifecycle contract.
package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type StartFunc func(ctx context.Context) error
type StopFunc func(ctx context.Context) error

// Runner is a minimal lifecycle: a thing that can be started once, stopped
// once, and asked whether it is currently running.
type Runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
}

type runner struct {
	mu      sync.Mutex
	start   StartFunc
	stop    StopFunc
	running atomic.Bool
	since   atomic.Value
}

// New builds a Runner from a pair of idempotent-by-convention callbacks: start
// is invoked by Start, stop by Stop. Concurrent Start/Stop calls on the same
// Runner are serialized.
func New(start StartFunc, stop StopFunc) Runner {
	return &runner{start: start, stop: stop}
}

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running.Load() {
		return nil
	}

	if r.start != nil {
		if err := r.start(ctx); err != nil {
			return err
		}
	}

	r.since.Store(time.Now())
	r.running.Store(true)
	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running.Load() {
		return nil
	}

	var err error
	if r.stop != nil {
		err = r.stop(ctx)
	}

	r.running.Store(false)
	return err
}

func (r *runner) IsRunning() bool {
	return r.running.Load()
}

func (r *runner) Uptime() time.Duration {
	if !r.running.Load() {
		return 0
	}
	if t, ok := r.since.Load().(time.Time); ok {
		return time.Since(t)
	}
	return 0
}
