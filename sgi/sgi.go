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

// ReceiveEvent is one body chunk handed to an application callable. A final
// event (MoreBody false, Body nil) marks end of stream.
type ReceiveEvent struct {
	MoreBody bool
	Body     []byte
}

// ReceiveFunc pulls the next body event, blocking the calling goroutine
// until one is available or ctx is cancelled.
type ReceiveFunc func(ctx context.Context) (ReceiveEvent, error)

// Message is either a StartMessage or a BodyMessage, passed to SendFunc.
type Message interface{ isMessage() }

// StartMessage begins the response: status line and headers.
type StartMessage struct {
	Status  int
	Headers []connection.Header
}

// BodyMessage streams one chunk of the response body. A final call
// (MoreBody false) finishes the response.
type BodyMessage struct {
	MoreBody bool
	Body     []byte
}

func (StartMessage) isMessage() {}
func (BodyMessage) isMessage()  {}

// SendFunc delivers one message to the connection, applying the write as
// far as the socket accepts without blocking.
type SendFunc func(ctx context.Context, msg Message) error

// App is the server gateway interface contract: an application callable
// receives the request scope plus a matched pair of receive/send functions
// bound to one connection's in-flight request.
type App func(ctx context.Context, scope Scope, receive ReceiveFunc, send SendFunc) error

// NewReceive binds a ReceiveFunc to conn. Each call blocks (cooperatively,
// via conn's read waker) until a body event is ready.
func NewReceive(conn *connection.Conn) ReceiveFunc {
	return func(ctx context.Context) (ReceiveEvent, error) {
		for {
			more, data, err := conn.Receive()
			if err == connection.WouldBlock {
				if werr := waitReadable(ctx, conn); werr != nil {
					return ReceiveEvent{}, werr
				}
				continue
			}
			if err != nil {
				return ReceiveEvent{}, err
			}
			return ReceiveEvent{MoreBody: more, Body: data}, nil
		}
	}
}

// NewSend binds a SendFunc to conn: it forwards start/body messages to the
// connection's writer and opportunistically flushes. A WouldBlock from
// Flush is not an error: the executor's write-readiness callback drains
// the rest once the socket is writable again.
func NewSend(conn *connection.Conn) SendFunc {
	return func(ctx context.Context, msg Message) error {
		var err error
		switch m := msg.(type) {
		case StartMessage:
			err = conn.SendStart(m.Status, m.Headers)
		case BodyMessage:
			err = conn.SendBody(m.MoreBody, m.Body)
		default:
			return ErrorSendAfterFinal.Error()
		}
		if err != nil {
			return err
		}
		if ferr := conn.Flush(); ferr != nil && ferr != connection.WouldBlock {
			return ferr
		}
		return nil
	}
}

// waitReadable blocks until conn's read waker fires or ctx is done.
func waitReadable(ctx context.Context, conn *connection.Conn) error {
	done := make(chan struct{})
	conn.SubscribeRead(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitWritable blocks until conn's write waker fires or ctx is done. Exposed
// for applications that need explicit back-pressure on a large streamed
// response rather than relying on the executor's opportunistic flush.
func waitWritable(ctx context.Context, conn *connection.Conn) error {
	done := make(chan struct{})
	conn.SubscribeWrite(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitWritable is the exported form of waitWritable, for callers outside
// this package composing their own send loop around SubscribeWrite.
func WaitWritable(ctx context.Context, conn *connection.Conn) error {
	return waitWritable(ctx, conn)
}
