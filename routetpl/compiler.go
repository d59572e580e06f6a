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

// Package routetpl compiles "{name:converter}" path templates into anchored
// regular expressions with named capture groups, and matches request paths
// against an ordered set of compiled templates.
package routetpl

import (
	"regexp"
	"strings"
)

// reserved is the sentinel the compiler substitutes placeholders with while
// it scans a template for literal segments; a template is rejected if it
// contains this sequence verbatim, since that would be ambiguous with the
// compiler's own bookkeeping.
const reserved = "\x00ROUTETPL\x00"

var placeholderRe = regexp.MustCompile(`\{([^}]+)\}`)

var builtinAtoms = map[string]string{
	"alpha":  `[A-Za-z]+`,
	"alnum":  `[A-Za-z0-9]+`,
	"string": `[^/]*`,
	"int":    `[0-9]+`,
	"path":   `.*`,
	"uuid":   `\b[0-9a-f]{8}\b-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-\b[0-9a-f]{12}\b`,
}

// Template is one compiled path template: its source text, the fully
// anchored regex, and the ordered list of placeholder names in the order
// they appear (which matches the order a callback's converters are applied
// in, per the endpoint binding).
type Template struct {
	Raw    string
	Regex  *regexp.Regexp
	Names  []string // placeholder name, in appearance order
	Atoms  []string // converter atom name, parallel to Names
}

// Compile lowers a template string to a Template. Callers are expected to
// have normalized away any "//" runs before calling Compile.
func Compile(tpl string) (*Template, error) {
	if strings.Contains(tpl, reserved) {
		return nil, ErrorReservedSentinel.Error()
	}

	matches := placeholderRe.FindAllStringSubmatchIndex(tpl, -1)

	var (
		names     []string
		atoms     []string
		sawPath   bool
		lastEnd   int
		pattern   strings.Builder
	)
	pattern.WriteString("^")

	for _, m := range matches {
		start, end := m[0], m[1]
		inner := tpl[m[2]:m[3]]

		if sawPath {
			return nil, ErrorSegmentAfterPath.Error()
		}

		sep := strings.IndexByte(inner, ':')
		if sep < 0 {
			return nil, ErrorInvalidPattern.Error()
		}
		name := inner[:sep]
		converter := inner[sep+1:]
		if name == "" || converter == "" {
			return nil, ErrorEmptyConverterName.Error()
		}

		pattern.WriteString(regexp.QuoteMeta(tpl[lastEnd:start]))

		atom, ok := builtinAtoms[converter]
		if !ok {
			atom = converter
		}
		pattern.WriteString("(?P<")
		pattern.WriteString(sanitizeGroupName(name))
		pattern.WriteString(">")
		pattern.WriteString(atom)
		pattern.WriteString(")")

		names = append(names, name)
		atoms = append(atoms, converter)
		if converter == "path" {
			sawPath = true
		}

		lastEnd = end
	}

	if sawPath && tpl[lastEnd:] != "" {
		return nil, ErrorSegmentAfterPath.Error()
	}

	pattern.WriteString(regexp.QuoteMeta(tpl[lastEnd:]))
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, ErrorInvalidPattern.Error(err)
	}

	return &Template{Raw: tpl, Regex: re, Names: names, Atoms: atoms}, nil
}

// sanitizeGroupName maps a placeholder name to a Go regexp group name,
// since Go's named groups reject some characters a template author might
// otherwise use freely (notably '-').
func sanitizeGroupName(name string) string {
	return strings.NewReplacer("-", "_").Replace(name)
}

// Match reports whether path fully matches the template, and if so, the
// captured placeholder values keyed by their original (unsanitized) name.
func (t *Template) Match(path string) (map[string]string, bool) {
	m := t.Regex.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	out := make(map[string]string, len(t.Names))
	for _, name := range t.Names {
		out[name] = m[t.Regex.SubexpIndex(sanitizeGroupName(name))]
	}
	return out, true
}
