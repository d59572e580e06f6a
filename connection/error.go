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

package connection

import (
	"errors"
	"fmt"
)

// WouldBlock is returned by send/receive operations that cannot make
// progress synchronously. Callers subscribe to be woken when the resource
// becomes ready; it is a cooperative signal, not a failure.
var WouldBlock = errors.New("connection: would block")

// ErrClosed is observed by in-flight send/receive calls on a connection that
// has since been closed (idle-max expiry, peer EOF, shutdown).
var ErrClosed = errors.New("connection: closed")

// ErrMalformedRequest signals a request line or header block that could not
// be parsed; the caller answers 400 and closes.
type ErrMalformedRequest struct {
	Reason string
}

func (e ErrMalformedRequest) Error() string {
	return fmt.Sprintf("connection: malformed request: %s", e.Reason)
}

// ErrProtocolMisuse covers send_body before send_start, a second send_start,
// or a body-length mismatch under a declared Content-Length. Fatal to the
// connection.
type ErrProtocolMisuse struct {
	Reason string
}

func (e ErrProtocolMisuse) Error() string {
	return fmt.Sprintf("connection: protocol misuse: %s", e.Reason)
}

// ErrHeadersTooLarge is raised when the header block exceeds MaxHeaderBytes;
// answered with 413 if possible, then the connection is closed.
var ErrHeadersTooLarge = errors.New("connection: header block exceeds maximum size")
