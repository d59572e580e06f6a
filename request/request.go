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

// Package request defines the per-request value handed through the
// endpoint invocation pipeline: everything the application needs to read
// about the request plus its cookies, session, and body receive handle.
package request

import (
	"context"
	"strings"

	libctx "github.com/sabouaram/pyre/context"

	"github.com/sabouaram/pyre/connection"
	"github.com/sabouaram/pyre/session"
	"github.com/sabouaram/pyre/sgi"
)

// Request is immutable after construction except for Session, whose writes
// are observed through its own dirty flag rather than by replacing the
// Request value.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Args     map[string]string
	Headers  []connection.Header
	Cookies  *session.Cookies
	Session  *session.Session
	Client   sgi.Addr
	Server   sgi.Addr
	Receive  sgi.ReceiveFunc

	ctx   context.Context
	attrs libctx.Config[string]
}

// New builds a Request from a matched scope and the cookies/session the
// application derived from it.
func New(ctx context.Context, scope sgi.Scope, args map[string]string, cookies *session.Cookies, sess *session.Session, receive sgi.ReceiveFunc) *Request {
	return &Request{
		Method:   scope.Method,
		Path:     scope.Path,
		RawQuery: scope.QueryString,
		Args:     args,
		Headers:  scope.Headers,
		Cookies:  cookies,
		Session:  sess,
		Client:   scope.Client,
		Server:   scope.Server,
		Receive:  receive,
		ctx:      ctx,
		attrs:    libctx.New[string](ctx),
	}
}

// Context returns the request's context, defaulting to context.Background.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithArgs returns a shallow copy of r carrying replaced captured args, used
// by a pre-invoke hook that wants to adopt a modified request.
func (r *Request) WithArgs(args map[string]string) *Request {
	clone := *r
	clone.Args = args
	return &clone
}

// Attr loads a value a PreInvoke hook stashed earlier in the same request's
// pipeline, such as an authenticated principal or a parsed trace id.
func (r *Request) Attr(key string) (interface{}, bool) {
	return r.attrs.Load(key)
}

// SetAttr stores a value under key, visible to every later stage of the
// same request (endpoint callback, error handler) via Attr.
func (r *Request) SetAttr(key string, val interface{}) {
	r.attrs.Store(key, val)
}

// Header looks up the first header matching name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
