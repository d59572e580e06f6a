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
	"bytes"
	"strconv"
	"strings"
)

// Header is one (name, value) pair as it appeared on the wire; names are
// preserved verbatim but compared case-insensitively.
type Header struct {
	Name  string
	Value string
}

// RequestLine is the parsed first line of an HTTP/1.x request.
type RequestLine struct {
	Method      string
	Path        string
	RawQuery    string
	HTTPVersion string
}

// ParsedRequest is everything the header block tells us, before any body
// bytes are consumed.
type ParsedRequest struct {
	Line           RequestLine
	Headers        []Header
	ContentLength  int64 // -1 if absent
	Chunked        bool
	HeaderBytes    int // size of the header block consumed, including CRLFCRLF
}

var crlfcrlf = []byte("\r\n\r\n")

// tryParseHeaders looks for a complete header block (terminated by an empty
// line) in buf. It returns ok=false, no error, if the block is not complete
// yet (more bytes needed).
func tryParseHeaders(buf []byte) (req ParsedRequest, ok bool, err error) {
	idx := bytes.Index(buf, crlfcrlf)
	if idx < 0 {
		return ParsedRequest{}, false, nil
	}

	block := buf[:idx]
	lines := strings.Split(string(block), "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return ParsedRequest{}, false, ErrMalformedRequest{Reason: "empty request line"}
	}

	line, err := parseRequestLine(lines[0])
	if err != nil {
		return ParsedRequest{}, false, err
	}

	headers := make([]Header, 0, len(lines)-1)
	for _, l := range lines[1:] {
		if l == "" {
			continue
		}
		sep := strings.IndexByte(l, ':')
		if sep < 0 {
			return ParsedRequest{}, false, ErrMalformedRequest{Reason: "header line missing colon"}
		}
		name := strings.TrimSpace(l[:sep])
		value := strings.TrimSpace(l[sep+1:])
		if name == "" {
			return ParsedRequest{}, false, ErrMalformedRequest{Reason: "empty header name"}
		}
		headers = append(headers, Header{Name: name, Value: value})
	}

	contentLength := int64(-1)
	chunked := false

	for _, h := range headers {
		switch strings.ToLower(h.Name) {
		case "content-length":
			n, e := strconv.ParseInt(strings.TrimSpace(h.Value), 10, 64)
			if e != nil || n < 0 {
				return ParsedRequest{}, false, ErrMalformedRequest{Reason: "invalid content-length"}
			}
			contentLength = n
		case "transfer-encoding":
			if strings.Contains(strings.ToLower(h.Value), "chunked") {
				chunked = true
			}
		}
	}

	return ParsedRequest{
		Line:          line,
		Headers:       headers,
		ContentLength: contentLength,
		Chunked:       chunked,
		HeaderBytes:   idx + len(crlfcrlf),
	}, true, nil
}

func parseRequestLine(l string) (RequestLine, error) {
	parts := strings.Split(l, " ")
	if len(parts) != 3 {
		return RequestLine{}, ErrMalformedRequest{Reason: "request line must have 3 parts"}
	}

	method := parts[0]
	target := parts[1]
	version := parts[2]

	if version != "HTTP/1.1" && version != "HTTP/1.0" {
		return RequestLine{}, ErrMalformedRequest{Reason: "unsupported http version"}
	}

	path := target
	rawQuery := ""
	if i := strings.IndexByte(target, '?'); i >= 0 {
		path = target[:i]
		rawQuery = target[i+1:]
	}

	decodedPath, err := percentDecode(path)
	if err != nil {
		return RequestLine{}, ErrMalformedRequest{Reason: "invalid percent-encoding in path"}
	}

	return RequestLine{
		Method:      method,
		Path:        decodedPath,
		RawQuery:    rawQuery,
		HTTPVersion: strings.TrimPrefix(version, "HTTP/"),
	}, nil
}

func percentDecode(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return "", ErrMalformedRequest{Reason: "truncated percent-encoding"}
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", err
			}
			b.WriteByte(byte(v))
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// decodeChunks extracts as many complete chunks as are present in buf,
// discarding trailers after the terminal zero-length chunk. It returns the
// decoded body bytes, whether the terminal chunk was seen, and how many
// bytes of buf were consumed.
func decodeChunks(buf []byte) (body []byte, done bool, consumed int) {
	for {
		idx := bytes.Index(buf[consumed:], []byte("\r\n"))
		if idx < 0 {
			return body, done, consumed
		}

		sizeLine := string(buf[consumed : consumed+idx])
		if semi := strings.IndexByte(sizeLine, ';'); semi >= 0 {
			sizeLine = sizeLine[:semi]
		}

		size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil {
			return body, done, consumed
		}

		chunkStart := consumed + idx + 2
		if size == 0 {
			// trailers up to the terminal CRLFCRLF; discard.
			rest := buf[chunkStart:]
			end := bytes.Index(rest, []byte("\r\n\r\n"))
			if end < 0 {
				if bytes.HasPrefix(rest, []byte("\r\n")) {
					return body, true, chunkStart + 2
				}
				return body, false, consumed
			}
			return body, true, chunkStart + end + 4
		}

		if int64(len(buf)-chunkStart) < size+2 {
			return body, false, consumed
		}

		body = append(body, buf[chunkStart:chunkStart+int(size)]...)
		consumed = chunkStart + int(size) + 2
	}
}
