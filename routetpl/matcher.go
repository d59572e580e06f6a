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

package routetpl

// Entry pairs a compiled template with an opaque endpoint handle; Matcher
// does not know or care what the handle means.
type Entry struct {
	Template *Template
	Handle   interface{}
}

// Matcher holds an ordered set of compiled templates. First full match
// wins; ties (which cannot occur for distinct templates against the same
// path, but may for ambiguous registrations) are broken by insertion order.
type Matcher struct {
	entries []Entry
}

// NewMatcher builds a Matcher over entries, preserving their order.
func NewMatcher(entries []Entry) *Matcher {
	m := &Matcher{entries: make([]Entry, len(entries))}
	copy(m.entries, entries)
	return m
}

// Get returns the first entry whose template fully matches path, along with
// the captured placeholder values, or ok=false if none match.
func (m *Matcher) Get(path string) (handle interface{}, args map[string]string, ok bool) {
	for _, e := range m.entries {
		if captured, matched := e.Template.Match(path); matched {
			return e.Handle, captured, true
		}
	}
	return nil, nil, false
}

// Len reports how many compiled templates the matcher holds.
func (m *Matcher) Len() int {
	return len(m.entries)
}
