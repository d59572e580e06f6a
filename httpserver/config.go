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

// Package httpserver wires a Listener, the Connection state machine, an
// Executor, and an SGI application together into a runnable server: it owns
// the accept loop, the per-connection read/write readiness callbacks, and
// the periodic keep-alive and idle-max sweeps.
package httpserver

import "time"

// Config are the server's construction parameters.
type Config struct {
	// ListenOn is one or many "host:port" / "ip:port" endpoints to bind.
	ListenOn []string

	// Backlog is the accept queue depth per listener.
	Backlog int

	// KeepAlive is how long an Idle connection may sit inactive before the
	// keep-alive sweep closes it.
	KeepAlive time.Duration

	// KeepAliveInterval is the keep-alive sweep's tick period.
	KeepAliveInterval time.Duration

	// IdleMax bounds total inactivity regardless of connection state; zero
	// or negative disables the idle-max sweep (defense against slowloris).
	IdleMax time.Duration

	// Debug enables a periodic client-count log line.
	Debug bool

	// Scheme is reported in each request's scope ("http" or "https"); the
	// runtime does not terminate TLS itself, a transparent wrapper may.
	Scheme string
}

// DefaultConfig returns the construction defaults named in the runtime's
// external interface: backlog 1024, 5s keep-alive, 1s sweep interval, no
// idle-max, debug off, scheme "http".
func DefaultConfig() Config {
	return Config{
		Backlog:           1024,
		KeepAlive:         5 * time.Second,
		KeepAliveInterval: time.Second,
		Scheme:            "http",
	}
}

func (c Config) withDefaults() Config {
	if c.Backlog <= 0 {
		c.Backlog = 1024
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = 5 * time.Second
	}
	if c.KeepAliveInterval <= 0 {
		c.KeepAliveInterval = time.Second
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
	return c
}
