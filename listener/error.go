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

package listener

import "github.com/sabouaram/pyre/errors"

const (
	ErrorInvalidAddress errors.CodeError = iota + errors.MinPkgListener
	ErrorSocketCreate
	ErrorSocketOption
	ErrorSocketBind
	ErrorSocketListen
)

func init() {
	errors.RegisterIdFctMessage(ErrorInvalidAddress, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorInvalidAddress:
		return "listen address is not a valid host:port"
	case ErrorSocketCreate:
		return "cannot create listening socket"
	case ErrorSocketOption:
		return "cannot set socket option"
	case ErrorSocketBind:
		return "cannot bind listening socket"
	case ErrorSocketListen:
		return "cannot put socket into listen mode"
	}
	return ""
}
