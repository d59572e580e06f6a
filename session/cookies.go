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

// Package session implements the request's Cookie header parsing and
// Set-Cookie emission, and a single signed "session" cookie on top of it.
package session

import (
	"strings"

	"github.com/sabouaram/pyre/connection"
)

// Cookies is the ordered name→value mapping parsed from a request's Cookie
// header, plus whatever the application adds during the request. It is
// serialized back as one Set-Cookie header per entry, only if dirty.
type Cookies struct {
	order  []string
	values map[string]string
	dirty  bool
}

// ParseCookies splits a "name1=val1; name2=val2" Cookie header value.
// An empty or absent header yields an empty, non-dirty Cookies.
func ParseCookies(header string) *Cookies {
	c := &Cookies{values: make(map[string]string)}
	if header == "" {
		return c
	}
	for _, part := range strings.Split(header, "; ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		name := part[:eq]
		value := part[eq+1:]
		if _, seen := c.values[name]; !seen {
			c.order = append(c.order, name)
		}
		c.values[name] = value
	}
	return c
}

// Get returns the cookie value for name, if present.
func (c *Cookies) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Set adds or overwrites a cookie and marks Cookies dirty.
func (c *Cookies) Set(name, value string) {
	if _, seen := c.values[name]; !seen {
		c.order = append(c.order, name)
	}
	c.values[name] = value
	c.dirty = true
}

// Dirty reports whether any cookie was added or changed since parsing.
func (c *Cookies) Dirty() bool {
	return c.dirty
}

// SetCookieHeaders renders one "Set-Cookie: name=value" header per entry,
// in insertion order. Returns nil if Cookies is not dirty.
func (c *Cookies) SetCookieHeaders() []connection.Header {
	if !c.dirty {
		return nil
	}
	headers := make([]connection.Header, 0, len(c.order))
	for _, name := range c.order {
		headers = append(headers, connection.Header{
			Name:  "Set-Cookie",
			Value: name + "=" + c.values[name],
		})
	}
	return headers
}
