/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package executor abstracts the cooperative scheduler that drives the
// transport: file-descriptor readiness registration, task spawning, sleeping,
// and one-shot waiters. Two bindings are provided: EventLoop, backed by a
// single epoll instance, and Nursery, which spawns one goroutine per watched
// fd for runtimes that cannot register raw readiness callbacks.
//
// Under EventLoop, callbacks registered through AddRead/AddWrite run one at a
// time on the goroutine driving Run, between epoll waits. Under Nursery, each
// watched fd's callbacks run on that fd's own watcher goroutine, so callbacks
// for different fds may run concurrently. Spawned tasks run on goroutines of
// their own under both bindings.
package executor

import (
	"context"
	"time"

	"github.com/sabouaram/pyre/waiter"
)

// ReadyFunc is invoked when fd becomes ready for the registered direction.
type ReadyFunc func(fd int)

// Executor is the cooperative scheduling contract the transport is built
// against. Implementations need not be safe for concurrent registration from
// multiple goroutines unless documented otherwise by the binding.
type Executor interface {
	// Spawn schedules fn to run as an independent task.
	Spawn(fn func(ctx context.Context))

	// AddRead arms cb to fire on read readiness for fd until RemoveRead(fd).
	AddRead(fd int, cb ReadyFunc) error
	RemoveRead(fd int)

	// AddWrite arms cb to fire on write readiness for fd until RemoveWrite(fd).
	AddWrite(fd int, cb ReadyFunc) error
	RemoveWrite(fd int)

	// CreateWaiter returns a fresh one-shot completion signal.
	CreateWaiter() waiter.Waiter

	// Sleep suspends only the calling goroutine for d, or until ctx is done.
	Sleep(ctx context.Context, d time.Duration)

	// Run drives the executor until ctx is cancelled or Close is called.
	Run(ctx context.Context) error

	// Close releases the executor's resources (epoll fd, goroutines).
	Close() error
}

// ErrAlreadyWatched is returned by AddRead/AddWrite when fd is already
// registered for that direction.
type ErrAlreadyWatched struct {
	FD int
}

func (e ErrAlreadyWatched) Error() string {
	return "executor: fd already watched"
}
