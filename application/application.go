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

// Package application aggregates blueprints into one routable unit: it
// rebuilds the route matcher as blueprints are added, adapts the SGI
// contract into the endpoint invocation pipeline, ferries cookies and
// sessions through each request, and supplies the 404/500 fallbacks.
package application

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sabouaram/pyre/connection"
	"github.com/sabouaram/pyre/endpoint"
	"github.com/sabouaram/pyre/logger"
	"github.com/sabouaram/pyre/request"
	"github.com/sabouaram/pyre/response"
	"github.com/sabouaram/pyre/routetpl"
	"github.com/sabouaram/pyre/session"
	"github.com/sabouaram/pyre/sgi"
)

// Application holds the blueprint vector and the current matcher built over
// it. Blueprints and endpoints are read-only once added; add is the only
// mutation, and it swaps the matcher pointer atomically so in-flight
// matches never observe a half-built matcher.
type Application struct {
	serializer session.Serializer

	mu         sync.Mutex // serializes AddBlueprint against itself
	blueprints []*endpoint.Blueprint
	matcher    atomic.Pointer[routetpl.Matcher]
}

// New builds an empty Application. serializer backs the session cookie;
// build one with session.NewSerializer or session.NewSerializerFromEnv.
func New(serializer session.Serializer) *Application {
	a := &Application{serializer: serializer}
	a.matcher.Store(routetpl.NewMatcher(nil))
	return a
}

// AddBlueprint assigns bp's endpoints a stable blueprint index, appends bp,
// and rebuilds the matcher. Safe to call concurrently with itself; never
// called concurrently with Serve in practice, since blueprints are wired up
// before Server.Start.
func (a *Application) AddBlueprint(bp *endpoint.Blueprint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	index := len(a.blueprints)
	for _, ep := range bp.Endpoints {
		ep.BlueprintIndex = index
	}
	a.blueprints = append(a.blueprints, bp)

	entries := make([]routetpl.Entry, 0, len(a.blueprints))
	for _, b := range a.blueprints {
		for _, ep := range b.Endpoints {
			entries = append(entries, routetpl.Entry{Template: ep.Template, Handle: ep})
		}
	}
	a.matcher.Store(routetpl.NewMatcher(entries))
}

// Serve is the SGI entry point (sgi.App-shaped): it matches scope.Path,
// builds cookies/session/Request on a hit, invokes the endpoint through its
// blueprint, flushes the session, and emits the response via send. A miss
// produces 404; a null/zero Response or an error that reaches this boundary
// unhandled produces 500.
func (a *Application) Serve(ctx context.Context, scope sgi.Scope, receive sgi.ReceiveFunc, send sgi.SendFunc) error {
	resp := a.route(ctx, scope, receive)

	if resp.Status == 0 {
		resp = response.InternalError()
	}

	headers := append(resp.Headers, connection.Header{
		Name:  "Content-Length",
		Value: strconv.Itoa(len(resp.Body)),
	})

	if err := send(ctx, sgi.StartMessage{Status: resp.Status, Headers: headers}); err != nil {
		return err
	}
	return send(ctx, sgi.BodyMessage{MoreBody: false, Body: resp.Body})
}

func (a *Application) route(ctx context.Context, scope sgi.Scope, receive sgi.ReceiveFunc) response.Response {
	m := a.matcher.Load()
	handle, args, ok := m.Get(scope.Path)
	if !ok {
		return response.NotFound()
	}

	ep, ok := handle.(*endpoint.Endpoint)
	if !ok || ep.BlueprintIndex < 0 || ep.BlueprintIndex >= len(a.blueprints) {
		logger.ErrorLevel.Log(ErrorBlueprintIndexOutOfRange.Message())
		return response.InternalError()
	}
	bp := a.blueprints[ep.BlueprintIndex]

	cookieHeader, _ := scope.Header("cookie")
	cookies := session.ParseCookies(cookieHeader)
	sess := session.FromCookies(cookies, a.serializer)

	req := request.New(ctx, scope, args, cookies, sess, receive)

	resp, err := bp.InvokeEndpoint(ep, req)
	if err != nil {
		logger.WarnLevel.Logf("endpoint %q: unhandled error: %v", ep.Raw, err)
		resp = response.InternalError()
	}

	if sess.Dirty() {
		if ferr := sess.Flush(cookies); ferr != nil {
			logger.WarnLevel.Logf("session flush failed: %v", ferr)
		}
	}
	resp.Headers = append(resp.Headers, cookies.SetCookieHeaders()...)

	return resp
}
