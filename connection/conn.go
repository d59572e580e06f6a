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
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const defaultMaxHeaderBytes = 1 << 16 // 64KiB
const defaultMaxWriteBuffer = 4 << 20 // 4MiB

// Conn is one accepted connection: its fd, the two buffers, parser state,
// and the keep-alive/idle accounting the sweeps consult. A Conn is owned by
// the goroutine(s) handling it; no field is safe for unsynchronized access
// from a second connection.
type Conn struct {
	fd       int
	peer     net.Addr
	local    net.Addr
	state    State
	mu       sync.Mutex

	readBuf  []byte
	writeBuf []byte

	maxHeaderBytes int
	maxWriteBuffer int

	req           ParsedRequest
	haveReq       bool
	bodyRead      int64  // bytes of body delivered to receive() so far
	bodyEOF       bool
	bodyDelivered bool   // true once a (more_body=false) has been returned
	chunkBuf      []byte // raw unconsumed chunk-framed bytes once headers are parsed
	pendingBody   []byte // decoded body bytes ready to hand to Receive

	headSent      bool
	finalSent     bool
	declaredLen   int64 // -1 means chunked response framing
	writtenBody   int64
	responseClose bool // Connection: close on either side, or an HTTP/1.0 request

	keepAliveSeconds int
	lastActivity     time.Time

	readWaker  func()
	writeWaker func()

	closed bool
	fatal  error
}

// New wraps an accepted, already non-blocking fd.
func New(fd int, peer, local net.Addr, keepAliveSeconds int) *Conn {
	return &Conn{
		fd:               fd,
		peer:             peer,
		local:            local,
		state:            Idle,
		maxHeaderBytes:   defaultMaxHeaderBytes,
		maxWriteBuffer:   defaultMaxWriteBuffer,
		declaredLen:      -1,
		keepAliveSeconds: keepAliveSeconds,
		lastActivity:     time.Now(),
	}
}

func (c *Conn) FD() int           { return c.fd }
func (c *Conn) Peer() net.Addr    { return c.peer }
func (c *Conn) Local() net.Addr   { return c.local }
func (c *Conn) State() State      { return c.state }
func (c *Conn) IsClosed() bool    { return c.state == Closed }
func (c *Conn) LastActivity() time.Time { return c.lastActivity }

func (c *Conn) touch() {
	c.lastActivity = time.Now()
}

// OnReadable is invoked by the executor when the fd is read-ready: it drains
// the socket into readBuf, advances the request parser, and returns the
// parsed request once the header block (and, once dispatched, the rest of
// the body) is available. ok is false while more bytes are still needed.
func (c *Conn) OnReadable() (req ParsedRequest, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := make([]byte, 65536)
	for {
		n, rerr := unix.Read(c.fd, buf)
		if n > 0 {
			c.readBuf = append(c.readBuf, buf[:n]...)
			c.touch()
		}
		if rerr != nil {
			if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
				break
			}
			if rerr == unix.EINTR {
				continue
			}
			c.fail(rerr)
			return ParsedRequest{}, false, rerr
		}
		if n == 0 {
			c.fail(ErrClosed)
			return ParsedRequest{}, false, ErrClosed
		}
		if n < len(buf) {
			break
		}
	}

	if !c.haveReq {
		if c.state == Idle {
			c.state = ReadingHeaders
		}

		if len(c.readBuf) > c.maxHeaderBytes {
			return ParsedRequest{}, false, ErrHeadersTooLarge
		}

		parsed, complete, perr := tryParseHeaders(c.readBuf)
		if perr != nil {
			return ParsedRequest{}, false, perr
		}
		if !complete {
			return ParsedRequest{}, false, nil
		}

		c.req = parsed
		c.haveReq = true
		c.chunkBuf = append([]byte(nil), c.readBuf[parsed.HeaderBytes:]...)
		c.readBuf = nil

		if parsed.ContentLength <= 0 && !parsed.Chunked {
			c.bodyEOF = true
			c.state = Dispatched
		} else {
			c.state = ReadingBody
		}
	} else if len(c.readBuf) > 0 {
		c.chunkBuf = append(c.chunkBuf, c.readBuf...)
		c.readBuf = nil
	}

	c.fireReadWaker()

	return c.req, true, nil
}

// pumpBody folds freshly-read socket bytes (already staged in
// chunkBuf by OnReadable) into the body stream; called lazily from Receive.
func (c *Conn) pumpBody() {
	if c.req.Chunked {
		decoded, done, consumed := decodeChunks(c.chunkBuf)
		if consumed > 0 {
			c.chunkBuf = c.chunkBuf[consumed:]
		}
		if len(decoded) > 0 {
			c.pendingBody = append(c.pendingBody, decoded...)
		}
		if done {
			c.bodyEOF = true
		}
		return
	}

	want := c.req.ContentLength - c.bodyRead - int64(len(c.pendingBody))
	if want <= 0 {
		return
	}
	take := want
	if take > int64(len(c.chunkBuf)) {
		take = int64(len(c.chunkBuf))
	}
	if take > 0 {
		c.pendingBody = append(c.pendingBody, c.chunkBuf[:take]...)
		c.chunkBuf = c.chunkBuf[take:]
	}
	if c.bodyRead+int64(len(c.pendingBody)) >= c.req.ContentLength {
		c.bodyEOF = true
	}
}

// Receive implements the SGI receive() contract: returns the next slice of
// body bytes synchronously, or WouldBlock if none is buffered yet and the
// body is not finished. After the stream's end, every subsequent call
// returns (false, nil, nil) immediately.
func (c *Conn) Receive() (moreBody bool, data []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, nil, ErrClosed
	}

	if c.bodyDelivered {
		return false, nil, nil
	}

	c.pumpBody()

	if len(c.pendingBody) == 0 {
		if c.bodyEOF {
			c.bodyDelivered = true
			c.state = Dispatched
			return false, nil, nil
		}
		return false, nil, WouldBlock
	}

	out := c.pendingBody
	c.pendingBody = nil
	c.bodyRead += int64(len(out))

	if c.bodyEOF && len(c.chunkBuf) == 0 {
		// This is the last chunk of body; the following call reports EOF.
		return true, out, nil
	}

	return true, out, nil
}

// SubscribeRead arms a one-shot waker fired the next time OnReadable would
// make progress; the engine clears it after firing.
func (c *Conn) SubscribeRead(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readWaker = cb
}

func (c *Conn) fireReadWaker() {
	if c.readWaker != nil {
		cb := c.readWaker
		c.readWaker = nil
		cb()
	}
}

func (c *Conn) fail(err error) {
	c.closed = true
	c.fatal = err
	c.state = Closed
}
