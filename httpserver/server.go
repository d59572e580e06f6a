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

package httpserver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	libatm "github.com/sabouaram/pyre/atomic"
	"github.com/sabouaram/pyre/connection"
	"github.com/sabouaram/pyre/executor"
	"github.com/sabouaram/pyre/listener"
	"github.com/sabouaram/pyre/logger"
	"github.com/sabouaram/pyre/sgi"
	"github.com/sabouaram/pyre/waiter"
)

// entry is the server's own bookkeeping for one accepted connection, kept
// separate from connection.Conn so the transport layer stays ignorant of
// scheduling concerns.
type entry struct {
	conn       *connection.Conn
	dispatched atomic.Bool // true while a request is being handled by the application
}

// Server wires one or more Listeners, the Connection state machine, and an
// Executor around an SGI application. It owns the accept loop, the
// per-connection read/write readiness callbacks, and the periodic
// keep-alive / idle-max sweeps; Start/Shutdown/RunForever mirror the
// external construction interface.
type Server struct {
	cfg  Config
	exec executor.Executor
	app  sgi.App

	mu        sync.Mutex
	listeners []*listener.Listener
	conns     libatm.MapTyped[int, *entry]

	metrics  *metrics
	shutdown waiter.Waiter
	running  atomic.Bool
}

// New builds a Server. exec must not yet be running; Start/RunForever calls
// exec.Run themselves.
func New(cfg Config, exec executor.Executor, app sgi.App) *Server {
	return &Server{
		cfg:     cfg.withDefaults(),
		exec:    exec,
		app:     app,
		conns:   libatm.NewMapTyped[int, *entry](),
		metrics: newMetrics(),
	}
}

// Start binds every configured listen address, arms their accept callbacks,
// and spawns the periodic sweeps. It does not block; call RunForever (or
// drive exec.Run yourself) to actually service connections.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrorAlreadyRunning.Error()
	}

	if len(s.cfg.ListenOn) == 0 {
		return ErrorNoListenAddress.Error()
	}

	s.shutdown = s.exec.CreateWaiter()

	for _, addr := range s.cfg.ListenOn {
		l, err := listener.New(addr, s.cfg.Backlog)
		if err != nil {
			return ErrorListenerBind.Error(err)
		}

		s.mu.Lock()
		s.listeners = append(s.listeners, l)
		s.mu.Unlock()

		ln := l
		if err := s.exec.AddRead(ln.FD, func(fd int) { s.acceptAll(ln) }); err != nil {
			return err
		}
	}

	s.exec.Spawn(s.sweepLoop)
	if s.cfg.Debug {
		s.exec.Spawn(s.debugLoop)
	}

	return nil
}

// RunForever runs Start then drives the executor until ctx is cancelled or
// Shutdown is called, then tears everything down.
func (s *Server) RunForever(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.exec.Run(ctx) }()

	select {
	case <-ctx.Done():
	case <-s.shutdown.Channel():
	}

	_ = s.Shutdown(ctx)
	return <-errCh
}

// Shutdown stops accepting new connections, closes every listener and every
// open connection, and releases the executor. In-flight application tasks
// are allowed to finish; their next send/receive call observes ErrClosed.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.mu.Lock()
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	conns := make([]*entry, 0)
	s.conns.Range(func(fd int, e *entry) bool {
		conns = append(conns, e)
		s.conns.Delete(fd)
		return true
	})

	for _, l := range listeners {
		s.exec.RemoveRead(l.FD)
		_ = l.Close()
	}
	for _, e := range conns {
		s.exec.RemoveRead(e.conn.FD())
		s.exec.RemoveWrite(e.conn.FD())
		_ = e.conn.Close()
	}

	if s.shutdown != nil {
		s.shutdown.Stop()
	}
	return s.exec.Close()
}

func (s *Server) acceptAll(l *listener.Listener) {
	for _, a := range l.PollAccept() {
		c := connection.New(a.FD, a.Peer, nil, int(s.cfg.KeepAlive.Seconds()))
		e := &entry{conn: c}

		s.conns.Store(a.FD, e)

		s.metrics.connsAccepted.Inc()
		s.metrics.openConnections.Inc()

		fd := a.FD
		if err := s.exec.AddRead(fd, func(fd int) { s.onReadable(fd, e) }); err != nil {
			logger.WarnLevel.LogErrorCtxf(logger.NilLevel, "failed to watch accepted connection", err)
			s.dropConn(fd)
		}
	}
}

func (s *Server) onReadable(fd int, e *entry) {
	req, ok, err := e.conn.OnReadable()
	if err != nil {
		status := 0
		if _, bad := err.(connection.ErrMalformedRequest); bad {
			status = 400
		} else if err == connection.ErrHeadersTooLarge {
			status = 413
		}
		if status != 0 && e.conn.SendStart(status, []connection.Header{{Name: "Content-Length", Value: "0"}, {Name: "Connection", Value: "close"}}) == nil {
			_ = e.conn.SendBody(false, nil)
			_ = e.conn.Flush()
		}
		s.dropConn(fd)
		return
	}
	if !ok {
		return
	}
	if !e.dispatched.CompareAndSwap(false, true) {
		return
	}

	scope := sgi.NewScope(req, e.conn.Peer(), e.conn.Local(), s.cfg.Scheme, "")
	receive := sgi.NewReceive(e.conn)
	send := s.instrumentedSend(e.conn)

	s.exec.Spawn(func(ctx context.Context) {
		if err := s.app(ctx, scope, receive, send); err != nil {
			logger.WarnLevel.LogErrorCtxf(logger.NilLevel, "application callable failed", err)
		}
		s.afterDispatch(fd, e)
	})
}

// instrumentedSend wraps sgi.NewSend so the status class of every response
// (never visible to the Server otherwise, since it only drives the transport)
// feeds the requestsTotal counter.
func (s *Server) instrumentedSend(c *connection.Conn) sgi.SendFunc {
	inner := sgi.NewSend(c)
	return func(ctx context.Context, msg sgi.Message) error {
		if start, ok := msg.(sgi.StartMessage); ok {
			s.metrics.requestsTotal.WithLabelValues(statusClass(start.Status)).Inc()
		}
		return inner(ctx, msg)
	}
}

func (s *Server) afterDispatch(fd int, e *entry) {
	switch e.conn.State() {
	case connection.Closed:
		s.dropConn(fd)
	case connection.Writing, connection.Draining:
		_ = s.exec.AddWrite(fd, func(fd int) { s.onWritable(fd, e) })
	default:
		e.dispatched.Store(false)
	}
}

func (s *Server) onWritable(fd int, e *entry) {
	err := e.conn.Flush()
	if err != nil && err != connection.WouldBlock {
		s.exec.RemoveWrite(fd)
		s.dropConn(fd)
		return
	}
	if err == connection.WouldBlock {
		return
	}

	s.exec.RemoveWrite(fd)
	if e.conn.State() == connection.Closed {
		s.dropConn(fd)
		return
	}
	e.dispatched.Store(false)
}

func (s *Server) dropConn(fd int) {
	s.exec.RemoveRead(fd)
	s.exec.RemoveWrite(fd)

	e, ok := s.conns.LoadAndDelete(fd)

	if ok {
		_ = e.conn.Close()
		s.metrics.openConnections.Dec()
		s.metrics.connsDropped.Inc()
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	for {
		s.exec.Sleep(ctx, s.cfg.KeepAliveInterval)
		if ctx.Err() != nil {
			return
		}
		s.sweepOnce()
	}
}

func (s *Server) sweepOnce() {
	now := time.Now()

	victims := make([]int, 0)
	s.conns.Range(func(fd int, e *entry) bool {
		if e.conn.ExceedsKeepAlive(now) || e.conn.ExceedsIdleMax(now, s.cfg.IdleMax) {
			victims = append(victims, fd)
		}
		return true
	})

	for _, fd := range victims {
		s.dropConn(fd)
	}
}

func (s *Server) debugLoop(ctx context.Context) {
	for {
		s.exec.Sleep(ctx, 5*time.Second)
		if ctx.Err() != nil {
			return
		}
		n := 0
		s.conns.Range(func(fd int, e *entry) bool {
			n++
			return true
		})
		logger.InfoLevel.Logf("httpserver: %d open connections", n)
	}
}
