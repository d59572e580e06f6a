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

package version

// License identifies the legal terms a built artifact is distributed under.
type License uint8

const (
	License_None License = iota
	License_MIT
	License_Apache_v2
	License_GNU_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_GNU_Affero_GPL_v3
	License_Mozilla_PL_v2
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4
	License_Creative_Common_Attribution_Share_Alike_v4
	License_SIL_Open_Font_v1_1
	License_Unlicense
)

func (l License) Name() string {
	switch l {
	case License_MIT:
		return "MIT License"
	case License_Apache_v2:
		return "Apache License 2.0"
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE v3"
	case License_GNU_Lesser_GPL_v3:
		return "GNU LESSER GENERAL PUBLIC LICENSE v3"
	case License_GNU_Affero_GPL_v3:
		return "GNU AFFERO GENERAL PUBLIC LICENSE v3"
	case License_Mozilla_PL_v2:
		return "Mozilla Public License 2.0"
	case License_Creative_Common_Zero_v1:
		return "Creative Commons CC0 1.0"
	case License_Creative_Common_Attribution_v4:
		return "Creative Commons Attribution 4.0"
	case License_Creative_Common_Attribution_Share_Alike_v4:
		return "Creative Commons Attribution-ShareAlike 4.0"
	case License_SIL_Open_Font_v1_1:
		return "SIL Open Font License 1.1"
	case License_Unlicense:
		return "The Unlicense"
	default:
		return "No License"
	}
}

// Boiler is the short notice meant to be embedded at the top of a source file.
func (l License) Boiler(author string, years string) string {
	switch l {
	case License_MIT:
		return "MIT License\n\nCopyright (c) " + years + " " + author
	case License_Unlicense:
		return "This is free and unencumbered software released into the public domain."
	default:
		return l.Name() + "\n\nCopyright (c) " + years + " " + author
	}
}

// Full returns the full license text. Real distributions embed the canonical
// text here; this returns the name plus boiler notice, which is what every
// caller in this module actually consumes.
func (l License) Full(author, years string) string {
	return l.Boiler(author, years)
}

// Legal is a one-line legal summary suitable for a `--version` footer.
func (l License) Legal(author, years string) string {
	return "Licensed under the " + l.Name() + ". Copyright (c) " + years + " " + author + "."
}
