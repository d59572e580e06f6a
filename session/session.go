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

package session

import (
	"crypto/sha256"
	"os"
	"strconv"

	"github.com/gorilla/securecookie"
)

const cookieName = "session"

// Serializer signs and verifies the session's mapping; gorilla/securecookie
// satisfies this directly.
type Serializer interface {
	Encode(name string, value interface{}) (string, error)
	Decode(name, value string, dst interface{}) error
}

// NewSerializer derives a signing key from secureKey (via SHA-256, so any
// length of input yields a valid 32-byte HMAC key) and returns a serializer
// that signs but does not encrypt the session payload.
func NewSerializer(secureKey string) Serializer {
	sum := sha256.Sum256([]byte(secureKey))
	return securecookie.New(sum[:], nil)
}

// NewSerializerFromEnv reads SECURE_KEY; if unset, it requires DEBUG to be
// truthy and falls back to an ephemeral random key, matching the runtime's
// refusal to start with neither set.
func NewSerializerFromEnv() (Serializer, error) {
	key := os.Getenv("SECURE_KEY")
	if key != "" {
		return NewSerializer(key), nil
	}

	debug, _ := strconv.ParseBool(os.Getenv("DEBUG"))
	if !debug {
		return nil, ErrorSecureKeyMissing.Error()
	}

	random, err := securecookie.GenerateRandomKey(32)
	if err != nil {
		return nil, ErrorSecureKeyMissing.Error(err)
	}
	return securecookie.New(random, nil), nil
}

// Session is the per-request mapping backing the signed "session" cookie.
// Reads never set dirty; any Set does.
type Session struct {
	data       map[string]interface{}
	dirty      bool
	serializer Serializer
}

// FromCookies decodes the "session" cookie (if present and valid) using
// serializer, starting from an empty session otherwise. A cookie that fails
// to verify is treated the same as an absent one: the request proceeds with
// a fresh, empty session rather than failing the request.
func FromCookies(cookies *Cookies, serializer Serializer) *Session {
	s := &Session{data: make(map[string]interface{}), serializer: serializer}

	raw, ok := cookies.Get(cookieName)
	if !ok {
		return s
	}

	var decoded map[string]interface{}
	if err := serializer.Decode(cookieName, raw, &decoded); err == nil {
		s.data = decoded
	}
	return s
}

// Get reads a session value; it never marks the session dirty.
func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set writes a session value and marks the session dirty.
func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.dirty = true
}

// Delete removes a session key and marks the session dirty.
func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

// Dirty reports whether the session was written to since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Flush encodes the session into cookies if dirty; a session that was only
// read, never written, emits no Set-Cookie at all.
func (s *Session) Flush(cookies *Cookies) error {
	if !s.dirty {
		return nil
	}
	encoded, err := s.serializer.Encode(cookieName, s.data)
	if err != nil {
		return ErrorSessionEncode.Error(err)
	}
	cookies.Set(cookieName, encoded)
	return nil
}
