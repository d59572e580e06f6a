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

type fdReg struct {
	read  ReadyFunc
	write ReadyFunc
}

// eventLoop is the general readiness-registration binding: one epoll
// instance, driven by a single goroutine, that multiplexes an arbitrary
// number of watched file descriptors plus a wake pipe used to interrupt
// EpollWait when a registration changes from another goroutine.
type eventLoop struct {
	epfd int

	mu   sync.Mutex
	regs map[int]*fdReg

	wakeR int
	wakeW int

	tasks chan func(ctx context.Context)
}

// NewEventLoop creates an epoll-backed Executor. Only available on platforms
// golang.org/x/sys/unix implements epoll for (Linux).
func NewEventLoop() (Executor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	fds, err := unixPipe()
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}

	el := &eventLoop{
		epfd:  epfd,
		regs:  make(map[int]*fdReg),
		wakeR: fds[0],
		wakeW: fds[1],
		tasks: make(chan func(ctx context.Context), 256),
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, el.wakeR, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(el.wakeR),
	}); err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}

	return el, nil
}

func unixPipe() ([2]int, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK); err != nil {
		return fds, err
	}
	return fds, nil
}

func (el *eventLoop) Spawn(fn func(ctx context.Context)) {
	select {
	case el.tasks <- fn:
		el.wake()
	default:
		go fn(context.Background())
	}
}

func (el *eventLoop) wake() {
	_, _ = unix.Write(el.wakeW, []byte{0})
}

func (el *eventLoop) AddRead(fd int, cb ReadyFunc) error {
	return el.add(fd, cb, true)
}

func (el *eventLoop) AddWrite(fd int, cb ReadyFunc) error {
	return el.add(fd, cb, false)
}

func (el *eventLoop) add(fd int, cb ReadyFunc, read bool) error {
	el.mu.Lock()
	defer el.mu.Unlock()

	r, ok := el.regs[fd]
	if !ok {
		r = &fdReg{}
		el.regs[fd] = r
	}

	if read && r.read != nil {
		return ErrAlreadyWatched{FD: fd}
	}
	if !read && r.write != nil {
		return ErrAlreadyWatched{FD: fd}
	}

	if read {
		r.read = cb
	} else {
		r.write = cb
	}

	return el.rearm(fd, r)
}

func (el *eventLoop) rearm(fd int, r *fdReg) error {
	var events uint32
	if r.read != nil {
		events |= unix.EPOLLIN
	}
	if r.write != nil {
		events |= unix.EPOLLOUT
	}

	op := unix.EPOLL_CTL_MOD
	if r.read == nil && r.write == nil {
		op = unix.EPOLL_CTL_DEL
		delete(el.regs, fd)
	}

	if op == unix.EPOLL_CTL_DEL {
		return unix.EpollCtl(el.epfd, op, fd, nil)
	}

	ev := &unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(el.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return unix.EpollCtl(el.epfd, unix.EPOLL_CTL_ADD, fd, ev)
	}
	return nil
}

func (el *eventLoop) RemoveRead(fd int) {
	el.mu.Lock()
	defer el.mu.Unlock()
	if r, ok := el.regs[fd]; ok {
		r.read = nil
		_ = el.rearm(fd, r)
	}
}

func (el *eventLoop) RemoveWrite(fd int) {
	el.mu.Lock()
	defer el.mu.Unlock()
	if r, ok := el.regs[fd]; ok {
		r.write = nil
		_ = el.rearm(fd, r)
	}
}

func (el *eventLoop) CreateWaiter() waiter.Waiter {
	return waiter.New()
}

func (el *eventLoop) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (el *eventLoop) Run(ctx context.Context) error {
	events := make([]unix.EpollEvent, 128)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := unix.EpollWait(el.epfd, events, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)

			if fd == el.wakeR {
				var buf [64]byte
				_, _ = unix.Read(el.wakeR, buf[:])
				el.drainTasks(ctx)
				continue
			}

			el.mu.Lock()
			r, ok := el.regs[fd]
			el.mu.Unlock()
			if !ok {
				continue
			}

			if events[i].Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 && r.read != nil {
				r.read(fd)
			}
			if events[i].Events&unix.EPOLLOUT != 0 && r.write != nil {
				r.write(fd)
			}
		}
	}
}

func (el *eventLoop) drainTasks(ctx context.Context) {
	for {
		select {
		case fn := <-el.tasks:
			go fn(ctx)
		default:
			return
		}
	}
}

func (el *eventLoop) Close() error {
	_ = unix.Close(el.wakeR)
	_ = unix.Close(el.wakeW)
	return unix.Close(el.epfd)
}
