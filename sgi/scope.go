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

// Package sgi implements the server gateway interface that sits between the
// connection state machine and application code: a Scope describing one
// request, and the paired receive/send functions an application callable
// uses to stream the body in and the response out.
package sgi

import (
	"net"
	"strings"

	"github.com/sabouaram/pyre/connection"
)

// Addr is a resolved (host, port) pair, as handed to applications under the
// "client" and "server" scope keys.
type Addr struct {
	Host string
	Port int
}

// Scope describes one request: everything known before the application
// callable is invoked. It is immutable for the lifetime of the request.
type Scope struct {
	Type        string // always "http"
	HTTPVersion string
	Method      string
	Scheme      string
	Path        string
	QueryString string
	RootPath    string
	Headers     []connection.Header
	Client      Addr
	Server      Addr
}

// NewScope builds a Scope from a parsed request and the connection it
// arrived on. scheme and rootPath are supplied by the server (rootPath is
// the blueprint mount prefix, empty at the application root).
func NewScope(req connection.ParsedRequest, peer, local net.Addr, scheme, rootPath string) Scope {
	return Scope{
		Type:        "http",
		HTTPVersion: req.Line.HTTPVersion,
		Method:      req.Line.Method,
		Scheme:      scheme,
		Path:        req.Line.Path,
		QueryString: req.Line.RawQuery,
		RootPath:    rootPath,
		Headers:     req.Headers,
		Client:      addrOf(peer),
		Server:      addrOf(local),
	}
}

func addrOf(a net.Addr) Addr {
	tcp, ok := a.(*net.TCPAddr)
	if !ok || tcp == nil {
		return Addr{}
	}
	return Addr{Host: tcp.IP.String(), Port: tcp.Port}
}

// Header looks up the first header matching name, case-insensitively.
func (s Scope) Header(name string) (string, bool) {
	for _, h := range s.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ToMap renders the scope as an ASGI-style dict, for the adapter in asgi.go.
func (s Scope) ToMap() map[string]interface{} {
	hdrs := make([][2]string, 0, len(s.Headers))
	for _, h := range s.Headers {
		hdrs = append(hdrs, [2]string{h.Name, h.Value})
	}
	return map[string]interface{}{
		"type":         s.Type,
		"http_version": s.HTTPVersion,
		"method":       s.Method,
		"scheme":       s.Scheme,
		"path":         s.Path,
		"query_string": s.QueryString,
		"root_path":    s.RootPath,
		"headers":      hdrs,
		"client":       [2]interface{}{s.Client.Host, s.Client.Port},
		"server":       [2]interface{}{s.Server.Host, s.Server.Port},
	}
}
