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
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var statusText = map[int]string{
	200: "OK", 201: "Created", 204: "No Content",
	301: "Moved Permanently", 302: "Found", 304: "Not Modified",
	400: "Bad Request", 401: "Unauthorized", 403: "Forbidden", 404: "Not Found",
	405: "Method Not Allowed", 413: "Payload Too Large", 500: "Internal Server Error",
	501: "Not Implemented", 503: "Service Unavailable",
}

func reasonPhrase(code int) string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return "Unknown"
}

// SendStart enqueues the status line and headers and transitions to Writing.
// It is valid exactly once per request; a second call is protocol misuse.
func (c *Conn) SendStart(status int, headers []Header) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.headSent {
		return ErrProtocolMisuse{Reason: "send_start called twice"}
	}

	c.declaredLen = -1
	for _, h := range headers {
		if strings.EqualFold(h.Name, "content-length") {
			if n, err := strconv.ParseInt(h.Value, 10, 64); err == nil {
				c.declaredLen = n
			}
		}
		if strings.EqualFold(h.Name, "connection") && strings.EqualFold(h.Value, "close") {
			c.responseClose = true
		}
	}

	if c.req.Line.HTTPVersion == "1.0" {
		c.responseClose = true
	}
	for _, h := range c.req.Headers {
		if strings.EqualFold(h.Name, "connection") && strings.EqualFold(h.Value, "close") {
			c.responseClose = true
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("HTTP/1.1 %d %s\r\n", status, reasonPhrase(status)))
	for _, h := range headers {
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
		sb.WriteString("\r\n")
	}
	if c.declaredLen < 0 {
		sb.WriteString("Transfer-Encoding: chunked\r\n")
	}
	if c.responseClose {
		sb.WriteString("Connection: close\r\n")
	} else {
		sb.WriteString("Connection: keep-alive\r\n")
	}
	sb.WriteString("\r\n")

	c.writeBuf = append(c.writeBuf, sb.String()...)
	c.headSent = true
	c.state = Writing

	return nil
}

// SendBody appends body to the write buffer, framing it as one chunk when
// no Content-Length was declared. moreBody=false marks the terminal call: it
// writes the zero-length chunk (if chunked) and flips the connection toward
// Draining. A body-length mismatch under a declared Content-Length is fatal.
func (c *Conn) SendBody(moreBody bool, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.headSent {
		return ErrProtocolMisuse{Reason: "send_body called before send_start"}
	}
	if c.finalSent {
		return ErrProtocolMisuse{Reason: "send_body called after terminal send_body"}
	}

	if len(c.writeBuf) > c.maxWriteBuffer {
		c.fail(fmt.Errorf("connection: write buffer exceeds maximum size"))
		return c.fatal
	}

	if c.declaredLen >= 0 {
		c.writtenBody += int64(len(body))
		if c.writtenBody > c.declaredLen {
			err := ErrProtocolMisuse{Reason: "body exceeds declared content-length"}
			c.fail(err)
			return err
		}
		c.writeBuf = append(c.writeBuf, body...)
	} else {
		if len(body) > 0 {
			c.writeBuf = append(c.writeBuf, []byte(fmt.Sprintf("%x\r\n", len(body)))...)
			c.writeBuf = append(c.writeBuf, body...)
			c.writeBuf = append(c.writeBuf, []byte("\r\n")...)
		}
	}

	if !moreBody {
		if c.declaredLen >= 0 && c.writtenBody != c.declaredLen {
			err := ErrProtocolMisuse{Reason: "body shorter than declared content-length"}
			c.fail(err)
			return err
		}
		if c.declaredLen < 0 {
			c.writeBuf = append(c.writeBuf, []byte("0\r\n\r\n")...)
		}
		c.finalSent = true
		c.state = Draining
	}

	return nil
}

// Flush writes as much of the buffered response as the socket accepts right
// now. It returns WouldBlock (not an error) if bytes remain after an EAGAIN.
// Once the terminal chunk has drained, the connection returns to Idle for a
// new request, or Closed if either side asked for Connection: close.
func (c *Conn) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.writeBuf) > 0 {
		n, err := unix.Write(c.fd, c.writeBuf)
		if n > 0 {
			c.writeBuf = c.writeBuf[n:]
			c.touch()
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return WouldBlock
			}
			if err == unix.EINTR {
				continue
			}
			c.fail(err)
			return err
		}
	}

	if c.finalSent && len(c.writeBuf) == 0 {
		if c.responseClose {
			c.state = Closed
			return c.closeSocket()
		}
		c.resetForNextRequest()
	}

	c.fireWriteWaker()

	return nil
}

func (c *Conn) resetForNextRequest() {
	c.state = Idle
	c.haveReq = false
	c.headSent = false
	c.finalSent = false
	c.declaredLen = -1
	c.writtenBody = 0
	c.bodyRead = 0
	c.bodyEOF = false
	c.bodyDelivered = false
	c.pendingBody = nil
	if len(c.chunkBuf) > 0 {
		c.readBuf = c.chunkBuf
	}
	c.chunkBuf = nil
}

// SubscribeWrite arms a one-shot waker for the next time Flush can make
// progress (i.e. the fd becomes write-ready again).
func (c *Conn) SubscribeWrite(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeWaker = cb
}

func (c *Conn) fireWriteWaker() {
	if c.writeWaker != nil {
		cb := c.writeWaker
		c.writeWaker = nil
		cb()
	}
}

func (c *Conn) closeSocket() error {
	c.closed = true
	return unix.Close(c.fd)
}

// Close closes the connection's socket exactly once, from any state.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.state = Closed
	return c.closeSocket()
}
