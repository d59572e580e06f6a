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

import "time"

// ExceedsKeepAlive reports whether an Idle connection has been inactive
// longer than its keep-alive budget.
func (c *Conn) ExceedsKeepAlive(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle || c.keepAliveSeconds <= 0 {
		return false
	}
	return now.Sub(c.lastActivity) > time.Duration(c.keepAliveSeconds)*time.Second
}

// ExceedsIdleMax reports whether total inactivity (regardless of state)
// exceeds idleMax. Used by the defense-in-depth sweep against slow clients
// that keep a connection half-open without making progress.
func (c *Conn) ExceedsIdleMax(now time.Time, idleMax time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idleMax <= 0 || c.state == Closed {
		return false
	}
	return now.Sub(c.lastActivity) > idleMax
}
