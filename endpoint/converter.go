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

// Package endpoint binds a compiled route template to a callback, an
// optional pre-invoke hook, an optional local error handler, and the
// per-parameter converters that turn captured string arguments into typed
// values before the callback runs.
package endpoint

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Converter turns one captured string argument into a typed value, or
// returns ConversionFailure if no candidate representation accepts it.
type Converter func(arg, raw string) (interface{}, error)

// Identity is the converter used when a template placeholder carries no
// recognized type (an absent annotation, in the source system's terms).
func Identity(_ string, raw string) (interface{}, error) {
	return raw, nil
}

// IntConverter parses a base-10 signed integer.
func IntConverter(arg string, raw string) (interface{}, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ConversionFailure{Arg: arg, Value: raw}
	}
	return v, nil
}

// UUIDConverter parses a canonical UUID string.
func UUIDConverter(arg string, raw string) (interface{}, error) {
	v, err := uuid.Parse(raw)
	if err != nil {
		return nil, ConversionFailure{Arg: arg, Value: raw}
	}
	return v, nil
}

// converterForAtom derives the default converter for a template's converter
// atom name, per the compiler's built-in set; anything else defaults to
// Identity, matching a bare/absent type annotation.
func converterForAtom(atom string) Converter {
	switch atom {
	case "int":
		return IntConverter
	case "uuid":
		return UUIDConverter
	default:
		return Identity
	}
}

// Union builds a converter that tries each candidate in declaration order
// and returns the first successful conversion; if none succeed, it returns
// ConversionFailure (mirroring a declared Union/Optional parameter type).
func Union(candidates ...Converter) Converter {
	return func(arg, raw string) (interface{}, error) {
		for _, c := range candidates {
			if v, err := c(arg, raw); err == nil {
				return v, nil
			}
		}
		return nil, ConversionFailure{Arg: arg, Value: raw}
	}
}

// WithDefault wraps c so that a failed conversion yields def instead of
// propagating ConversionFailure.
func WithDefault(c Converter, def interface{}) Converter {
	return func(arg, raw string) (interface{}, error) {
		if v, err := c(arg, raw); err == nil {
			return v, nil
		}
		return def, nil
	}
}

// Cache wraps c so that repeated calls with the same raw value return a
// memoized result instead of re-running the conversion. The returned
// Converter is registered once on an Endpoint and then invoked concurrently
// by every connection matching that route, so the memo map is guarded by a
// mutex rather than assumed single-owner.
func Cache(c Converter) Converter {
	var (
		mu   sync.RWMutex
		memo = make(map[string]interface{})
	)
	return func(arg, raw string) (interface{}, error) {
		mu.RLock()
		v, ok := memo[raw]
		mu.RUnlock()
		if ok {
			return v, nil
		}

		v, err := c(arg, raw)
		if err != nil {
			return nil, err
		}

		mu.Lock()
		memo[raw] = v
		mu.Unlock()
		return v, nil
	}
}
