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

// Package response holds the outcome of an endpoint invocation before it is
// handed to the SGI send callable: a status code, an ordered header list,
// and the body bytes.
package response

import (
	"github.com/bytedance/sonic"

	"github.com/sabouaram/pyre/connection"
)

// Response is one finished answer to a request. Content-Length is derived
// from len(Body) by the caller unless chunked framing was requested by
// omitting it, mirroring the connection writer's own contract.
type Response struct {
	Status  int
	Headers []connection.Header
	Body    []byte
}

// New builds a Response, appending a Content-Type header.
func New(status int, contentType string, body []byte) Response {
	return Response{
		Status:  status,
		Headers: []connection.Header{{Name: "Content-Type", Value: contentType}},
		Body:    body,
	}
}

// Text builds a "text/plain; charset=utf-8" response.
func Text(status int, body string) Response {
	return New(status, "text/plain; charset=utf-8", []byte(body))
}

// JSON marshals v with sonic and builds an "application/json" response.
func JSON(status int, v interface{}) (Response, error) {
	body, err := sonic.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return New(status, "application/json", body), nil
}

// WithHeader returns a copy of r with the given header appended.
func (r Response) WithHeader(name, value string) Response {
	headers := make([]connection.Header, len(r.Headers), len(r.Headers)+1)
	copy(headers, r.Headers)
	headers = append(headers, connection.Header{Name: name, Value: value})
	r.Headers = headers
	return r
}

// NotFound is the application's fallback when no route matches.
func NotFound() Response {
	return Text(404, "Not Found")
}

// InternalError is the application's fallback when an endpoint's error
// reaches the application boundary unhandled.
func InternalError() Response {
	return Text(500, "Internal Server Error")
}
