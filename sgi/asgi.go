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

package sgi

import (
	"context"

	"github.com/sabouaram/pyre/connection"
)

// ASGIReceive mirrors the ASGI receive() awaitable: each call returns the
// next event dict, e.g. {"type": "http.request", "body": [], "more_body": false}.
type ASGIReceive func(ctx context.Context) (map[string]interface{}, error)

// ASGISend mirrors the ASGI send(event) awaitable.
type ASGISend func(ctx context.Context, event map[string]interface{}) error

// ASGIApp is the three-argument ASGI application callable shape, so existing
// ASGI-style handlers port over with no change to their bodies.
type ASGIApp func(ctx context.Context, scope map[string]interface{}, receive ASGIReceive, send ASGISend) error

// FromASGI adapts an ASGIApp into an App, translating the scope to its dict
// form and the typed receive/send events to and from ASGI event dicts.
func FromASGI(a ASGIApp) App {
	return func(ctx context.Context, scope Scope, receive ReceiveFunc, send SendFunc) error {
		asgiReceive := func(ctx context.Context) (map[string]interface{}, error) {
			ev, err := receive(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"type":      "http.request",
				"body":      ev.Body,
				"more_body": ev.MoreBody,
			}, nil
		}

		asgiSend := func(ctx context.Context, event map[string]interface{}) error {
			switch event["type"] {
			case "http.response.start":
				status, _ := event["status"].(int)
				var headers []connection.Header
				if raw, ok := event["headers"].([][2]string); ok {
					for _, h := range raw {
						headers = append(headers, connection.Header{Name: h[0], Value: h[1]})
					}
				}
				return send(ctx, StartMessage{Status: status, Headers: headers})
			case "http.response.body":
				body, _ := event["body"].([]byte)
				more, _ := event["more_body"].(bool)
				return send(ctx, BodyMessage{MoreBody: more, Body: body})
			default:
				return ErrorSendAfterFinal.Error()
			}
		}

		return a(ctx, scope.ToMap(), asgiReceive, asgiSend)
	}
}
