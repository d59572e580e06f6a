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

	"github.com/sabouaram/pyre/executor"
	"github.com/sabouaram/pyre/runner"
	"github.com/sabouaram/pyre/sgi"
)

// Pool runs several independent Servers (distinct listen addresses, each
// with its own executor) under one runner.Runner, so a process hosting
// more than one bind address still has a single start/stop lifecycle.
type Pool struct {
	runner.Runner

	mu      sync.Mutex
	members []*poolMember
}

type poolMember struct {
	srv    *Server
	exec   executor.Executor
	cancel context.CancelFunc
	errCh  chan error
}

// NewPool builds one Server per Config, each bound to a fresh executor
// produced by newExec (typically executor.NewEventLoop), all dispatching
// into the same SGI application.
func NewPool(configs []Config, newExec func() (executor.Executor, error), app sgi.App) (*Pool, error) {
	p := &Pool{}

	for _, cfg := range configs {
		exec, err := newExec()
		if err != nil {
			return nil, err
		}
		p.members = append(p.members, &poolMember{
			srv:  New(cfg, exec, app),
			exec: exec,
		})
	}

	p.Runner = runner.New(p.startAll, p.stopAll)
	return p, nil
}

func (p *Pool) startAll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, m := range p.members {
		memberCtx, cancel := context.WithCancel(ctx)
		m.cancel = cancel
		m.errCh = make(chan error, 1)

		if err := m.srv.Start(memberCtx); err != nil {
			cancel()
			return err
		}

		exec := m.exec
		errCh := m.errCh
		go func() { errCh <- exec.Run(memberCtx) }()
	}
	return nil
}

func (p *Pool) stopAll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, m := range p.members {
		if err := m.srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if m.cancel != nil {
			m.cancel()
		}
		if m.errCh != nil {
			<-m.errCh
		}
	}
	return firstErr
}

// Len reports how many servers the pool manages.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.members)
}
