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

package endpoint

import (
	"github.com/sabouaram/pyre/request"
	"github.com/sabouaram/pyre/response"
)

// Blueprint is a named collection of endpoints sharing a class-wide error
// handler. Endpoints are discovered once, at Add time; the Blueprint itself
// carries no back-reference to the Application it is later attached to.
// The Application holds the blueprint vector and each Endpoint only carries
// its own BlueprintIndex, per the flattened-reference design.
type Blueprint struct {
	Name         string
	Endpoints    []*Endpoint
	errorHandler ErrorHandler
}

// NewBlueprint creates an empty, named Blueprint.
func NewBlueprint(name string) *Blueprint {
	return &Blueprint{Name: name}
}

// Add appends ep to the blueprint, returning the Blueprint for chaining.
func (b *Blueprint) Add(ep *Endpoint) *Blueprint {
	b.Endpoints = append(b.Endpoints, ep)
	return b
}

// OnError attaches the blueprint's class-wide error handler, consulted when
// an endpoint has no local handler (or its local handler re-raises).
func (b *Blueprint) OnError(fn ErrorHandler) *Blueprint {
	b.errorHandler = fn
	return b
}

// InvokeEndpoint runs ep's own pipeline, then falls back to the blueprint's
// error handler if ep left the error unhandled. A still-unhandled error is
// returned to the caller (the Application) to produce the 500 fallback.
func (b *Blueprint) InvokeEndpoint(ep *Endpoint, req *request.Request) (response.Response, error) {
	resp, err := ep.Invoke(req)
	if err == nil {
		return resp, nil
	}
	if b.errorHandler == nil {
		return response.Response{}, err
	}
	return b.errorHandler(req, err)
}
