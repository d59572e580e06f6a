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
	"github.com/sabouaram/pyre/routetpl"
)

// Callback handles a matched request with its converted positional
// arguments, in the same order as the template's placeholders.
type Callback func(req *request.Request, args []interface{}) (response.Response, error)

// PreInvoke runs before argument conversion. Returning a non-nil request
// adopts it for the rest of the pipeline; returning an error short-circuits
// straight to error handling.
type PreInvoke func(req *request.Request) (*request.Request, error)

// ErrorHandler observes an error raised anywhere in the invocation pipeline.
// Returning a nil error means the error was silently handled and resp is
// the response to send; returning a non-nil error re-raises it to the next
// handler in the chain (blueprint, then application).
type ErrorHandler func(req *request.Request, err error) (resp response.Response, handled error)

// Endpoint is a route template bound to a callback, with the optional hooks
// and the converter list derived from (or overridden against) the
// template's placeholders. It is immutable once New (and any Before/OnError
// calls made immediately after it) returns control to blueprint binding.
type Endpoint struct {
	Raw            string
	Template       *routetpl.Template
	BlueprintIndex int // set by Application.AddBlueprint; flattens the endpoint->blueprint reference

	callback     Callback
	converters   []Converter
	preInvoke    PreInvoke
	errorHandler ErrorHandler
}

// New compiles template and binds it to cb. If converters is empty, one
// converter per placeholder is derived from the template's own converter
// atoms (an {x:int} placeholder yields IntConverter, for instance),
// matching the "generate at build time from the template" design decision.
// If converters is non-empty its length must equal the placeholder count.
func New(template string, cb Callback, converters ...Converter) (*Endpoint, error) {
	tpl, err := routetpl.Compile(template)
	if err != nil {
		return nil, ErrorTemplateInvalid.Error(err)
	}

	if len(converters) == 0 {
		converters = make([]Converter, len(tpl.Atoms))
		for i, atom := range tpl.Atoms {
			converters[i] = converterForAtom(atom)
		}
	} else if len(converters) != len(tpl.Names) {
		return nil, ErrorConverterCountMismatch.Error()
	}

	return &Endpoint{
		Raw:        template,
		Template:   tpl,
		callback:   cb,
		converters: converters,
	}, nil
}

// Before attaches a pre-invoke hook, returning the same Endpoint for
// chaining at registration time.
func (e *Endpoint) Before(fn PreInvoke) *Endpoint {
	e.preInvoke = fn
	return e
}

// OnError attaches a local error handler, returning the same Endpoint for
// chaining at registration time.
func (e *Endpoint) OnError(fn ErrorHandler) *Endpoint {
	e.errorHandler = fn
	return e
}

// Invoke runs the endpoint's pipeline: pre-invoke, argument conversion, the
// callback, and (on error) the local error handler. It returns a non-nil
// error only when the error was not locally handled, so the caller (the
// owning Blueprint) can continue the propagation chain.
func (e *Endpoint) Invoke(req *request.Request) (response.Response, error) {
	resp, err := e.invoke(req)
	if err == nil {
		return resp, nil
	}
	if e.errorHandler == nil {
		return response.Response{}, err
	}
	return e.errorHandler(req, err)
}

func (e *Endpoint) invoke(req *request.Request) (response.Response, error) {
	if e.preInvoke != nil {
		updated, err := e.preInvoke(req)
		if err != nil {
			return response.Response{}, err
		}
		if updated != nil {
			req = updated
		}
	}

	args := make([]interface{}, len(e.converters))
	for i, name := range e.Template.Names {
		v, err := e.converters[i](name, req.Args[name])
		if err != nil {
			return response.Response{}, err
		}
		args[i] = v
	}

	return e.callback(req, args)
}
