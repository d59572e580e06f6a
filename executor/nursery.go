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

package executor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/pyre/waiter"
)

// nursery is the structured-concurrency binding: it has no raw readiness
// callback registry. Instead, watching a fd spawns one goroutine that loops
// on unix.Poll for that single fd until the watch is removed or the nursery
// is closed. This is the shape required by cooperative runtimes (e.g. a
// trio-style nursery) that only expose "wait until readable/writable" as a
// task, never a callback.
type nursery struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	wg    sync.WaitGroup
	watch map[int]map[bool]context.CancelFunc // fd -> (isRead -> cancel)
}

// NewNursery returns a nursery-based Executor bound to parent; cancelling
// parent (or calling Close) stops every watcher goroutine.
func NewNursery(parent context.Context) Executor {
	ctx, cancel := context.WithCancel(parent)
	return &nursery{
		ctx:    ctx,
		cancel: cancel,
		watch:  make(map[int]map[bool]context.CancelFunc),
	}
}

func (n *nursery) Spawn(fn func(ctx context.Context)) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		fn(n.ctx)
	}()
}

func (n *nursery) AddRead(fd int, cb ReadyFunc) error {
	return n.add(fd, cb, true)
}

func (n *nursery) AddWrite(fd int, cb ReadyFunc) error {
	return n.add(fd, cb, false)
}

func (n *nursery) add(fd int, cb ReadyFunc, read bool) error {
	n.mu.Lock()
	dirs, ok := n.watch[fd]
	if !ok {
		dirs = make(map[bool]context.CancelFunc)
		n.watch[fd] = dirs
	}
	if _, exists := dirs[read]; exists {
		n.mu.Unlock()
		return ErrAlreadyWatched{FD: fd}
	}

	wctx, wcancel := context.WithCancel(n.ctx)
	dirs[read] = wcancel
	n.mu.Unlock()

	n.wg.Add(1)
	go n.pollLoop(wctx, fd, read, cb)

	return nil
}

func (n *nursery) pollLoop(ctx context.Context, fd int, read bool, cb ReadyFunc) {
	defer n.wg.Done()

	events := int16(unix.POLLOUT)
	if read {
		events = unix.POLLIN
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cnt, err := unix.Poll(fds, 250)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if cnt == 0 {
			continue
		}
		if fds[0].Revents&(events|unix.POLLHUP|unix.POLLERR) != 0 {
			cb(fd)
		}
	}
}

func (n *nursery) RemoveRead(fd int)  { n.remove(fd, true) }
func (n *nursery) RemoveWrite(fd int) { n.remove(fd, false) }

func (n *nursery) remove(fd int, read bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	dirs, ok := n.watch[fd]
	if !ok {
		return
	}
	if cancel, exists := dirs[read]; exists {
		cancel()
		delete(dirs, read)
	}
	if len(dirs) == 0 {
		delete(n.watch, fd)
	}
}

func (n *nursery) CreateWaiter() waiter.Waiter {
	return waiter.New()
}

func (n *nursery) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	case <-n.ctx.Done():
	}
}

func (n *nursery) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-n.ctx.Done():
	}
	return nil
}

func (n *nursery) Close() error {
	n.cancel()
	n.wg.Wait()
	return nil
}
