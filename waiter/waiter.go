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

// Package waiter implements a one-shot completion signal: a Waiter is created
// once, awaited any number of times by any number of goroutines, and resolved
// at most once by a call to Stop.
package waiter

import "sync"

// Waiter is awaitable at most once-resolved. Stop is idempotent; Wait may be
// called concurrently by multiple goroutines, all of which release together.
type Waiter interface {
	// Wait blocks until Stop has been called.
	Wait()
	// Channel exposes the underlying close signal for use in a select.
	Channel() <-chan struct{}
	// IsDone reports, without blocking, whether Stop has already fired.
	IsDone() bool
	// Stop resolves the waiter. Safe to call more than once or concurrently.
	Stop()
}

type waiter struct {
	once sync.Once
	done chan struct{}
}

// New returns a fresh, unresolved Waiter.
func New() Waiter {
	return &waiter{done: make(chan struct{})}
}

func (w *waiter) Wait() {
	<-w.done
}

func (w *waiter) Channel() <-chan struct{} {
	return w.done
}

func (w *waiter) IsDone() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *waiter) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
