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

// Package listener owns a bound, non-blocking passive TCP socket built
// directly on golang.org/x/sys/unix rather than net.Listener, since the
// server needs a raw file descriptor to drive through the executor's
// readiness-registration contract.
package listener

import (
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/pyre/errors"
	liblog "github.com/sabouaram/pyre/logger"
)

// Accepted is a single accepted connection: its raw fd and the peer address.
type Accepted struct {
	FD   int
	Peer net.Addr
}

// Listener is a single bound passive socket.
type Listener struct {
	FD      int
	Addr    string
	Backlog int
}

// New binds, sets non-blocking, applies SO_REUSEADDR/SO_REUSEPORT, and starts
// listening on addr ("host:port" or "ip:port"), with the given accept backlog.
func New(addr string, backlog int) (*Listener, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, ErrorInvalidAddress.Error(err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, ErrorInvalidAddress.Error(err)
	}

	domain := unix.AF_INET
	var sa unix.Sockaddr

	ip := net.ParseIP(host)
	if ip == nil && host != "" {
		ips, e := net.LookupIP(host)
		if e != nil || len(ips) == 0 {
			return nil, ErrorInvalidAddress.Error(e)
		}
		ip = ips[0]
	}

	if ip4 := ip.To4(); ip4 != nil {
		var a [4]byte
		copy(a[:], ip4)
		sa = &unix.SockaddrInet4{Port: port, Addr: a}
	} else {
		domain = unix.AF_INET6
		var a [16]byte
		if ip != nil {
			copy(a[:], ip.To16())
		}
		sa = &unix.SockaddrInet6{Port: port, Addr: a}
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, ErrorSocketCreate.Error(err)
	}

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, ErrorSocketOption.Error(err)
	}

	// SO_REUSEPORT: best-effort, not supported on every platform/kernel.
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		liblog.DebugLevel.LogErrorCtxf(liblog.NilLevel, "SO_REUSEPORT unavailable on %s", err, addr)
	}

	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, ErrorSocketBind.Error(err)
	}

	if backlog <= 0 {
		backlog = 1024
	}

	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, ErrorSocketListen.Error(err)
	}

	return &Listener{FD: fd, Addr: addr, Backlog: backlog}, nil
}

// PollAccept drains the accept queue iteratively until EAGAIN, returning
// every connection accepted this tick. Errors other than would-block are
// logged and the loop continues; the listener is never closed as a result.
func (l *Listener) PollAccept() []Accepted {
	var out []Accepted

	for {
		nfd, sa, err := unix.Accept4(l.FD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return out
			}
			if err == unix.EINTR {
				continue
			}
			liblog.WarnLevel.LogErrorCtxf(liblog.NilLevel, "accept on %s", err, l.Addr)
			return out
		}

		out = append(out, Accepted{FD: nfd, Peer: sockaddrToAddr(sa)})
	}
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch s := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(s.Addr[:]), Port: s.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(s.Addr[:]), Port: s.Port}
	default:
		return nil
	}
}

// Close shuts down the passive socket exactly once.
func (l *Listener) Close() error {
	return unix.Close(l.FD)
}
