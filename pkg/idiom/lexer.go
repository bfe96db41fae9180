// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package idiom

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const whitespace = " \t\r\n"

var closers = map[byte]byte{
	'{': '}',
	'(': ')',
	'[': ']',
}

// skipAtom reports whether src[i] starts a string, template literal or
// comment, and if so returns the index just past it.
func skipAtom(src string, i int) (int, bool, error) {
	switch src[i] {
	case '"', '\'':
		end, err := skipQuoted(src, i)
		return end, true, err
	case '`':
		end, err := skipTemplate(src, i)
		return end, true, err
	case '/':
		if i+1 >= len(src) {
			return i, false, nil
		}
		switch src[i+1] {
		case '/':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return len(src), true, nil
			}
			return i + nl, true, nil
		case '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return 0, true, errors.Errorf("unterminated block comment at offset %d", i)
			}
			return i + 2 + end + 2, true, nil
		}
	}
	return i, false, nil
}

func skipQuoted(src string, i int) (int, error) {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return 0, errors.Errorf("newline in string literal at offset %d", i)
		case q:
			return j + 1, nil
		}
	}
	return 0, errors.Errorf("unterminated string literal at offset %d", i)
}

func skipTemplate(src string, i int) (int, error) {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1, nil
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				end, err := matchClose(src, j+1)
				if err != nil {
					return 0, errors.Errorf("template interpolation: %w", err)
				}
				j = end
			}
		}
	}
	return 0, errors.Errorf("unterminated template literal at offset %d", i)
}

// matchClose returns the index of the bracket closing the one at src[open].
// Strings, template literals and comments are skipped, so braces inside
// them never count.
func matchClose(src string, open int) (int, error) {
	if open >= len(src) {
		return 0, errors.Errorf("offset %d out of range", open)
	}
	if _, ok := closers[src[open]]; !ok {
		return 0, errors.Errorf("no opening bracket at offset %d", open)
	}

	var stack []byte
	for i := open; i < len(src); {
		end, ok, err := skipAtom(src, i)
		if err != nil {
			return 0, err
		}
		if ok {
			i = end
			continue
		}

		switch c := src[i]; c {
		case '{', '(', '[':
			stack = append(stack, closers[c])
		case '}', ')', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, errors.Errorf("unbalanced %q at offset %d", c, i)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, nil
			}
		}
		i++
	}
	return 0, errors.Errorf("unterminated %q at offset %d", src[open], open)
}

// span is a half-open byte range into a source text.
type span struct {
	start, end int
}

// splitTopLevel splits src[start:end] on commas that are not nested in
// brackets, strings, templates or comments. Whitespace-only tails (the
// trailing comma case) are dropped.
func splitTopLevel(src string, start, end int) ([]span, error) {
	var parts []span
	depth, from := 0, start
	for i := start; i < end; {
		next, ok, err := skipAtom(src, i)
		if err != nil {
			return nil, err
		}
		if ok {
			i = next
			continue
		}
		switch src[i] {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, span{from, i})
				from = i + 1
			}
		}
		i++
	}
	if strings.TrimSpace(src[from:end]) != "" {
		parts = append(parts, span{from, end})
	}
	return parts, nil
}

// atomSpans returns the strings, template literals and comments of src in
// order. Text that does not lex, such as a quote in a regular expression
// literal, is stepped over one byte at a time.
func atomSpans(src string) []span {
	var spans []span
	for i := 0; i < len(src); {
		end, ok, err := skipAtom(src, i)
		if ok && err == nil {
			spans = append(spans, span{i, end})
			i = end
			continue
		}
		i++
	}
	return spans
}

// inSpans reports whether off falls inside one of the ordered spans.
func inSpans(spans []span, off int) bool {
	k := sort.Search(len(spans), func(k int) bool { return spans[k].end > off })
	return k < len(spans) && spans[k].start <= off
}

// lineEnding returns "\r\n" when the line holding off ends that way, and
// "\n" otherwise.
func lineEnding(src string, off int) string {
	nl := strings.IndexByte(src[off:], '\n')
	if nl > 0 && src[off+nl-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// skipSpace returns the first index at or after i that is not whitespace.
func skipSpace(src string, i int) int {
	for i < len(src) && strings.IndexByte(whitespace, src[i]) >= 0 {
		i++
	}
	return i
}

// lineIndent returns the leading whitespace of the line containing off.
func lineIndent(src string, off int) string {
	start := strings.LastIndexByte(src[:off], '\n') + 1
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}

// lineOf returns the 1-based line number of off.
func lineOf(src string, off int) int {
	return strings.Count(src[:off], "\n") + 1
}

// reindent rewrites the indentation of every line after the first from
// "from" to "to". Line breaks inside string or template literals are left
// alone since they are part of the value.
func reindent(text, from, to string) string {
	if from == to {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		end, ok, err := skipAtom(text, i)
		if err != nil {
			// unreachable for text that was already delimited by matchClose
			b.WriteString(text[i:])
			break
		}
		if ok {
			b.WriteString(text[i:end])
			i = end
			continue
		}
		b.WriteByte(text[i])
		if text[i] == '\n' && strings.HasPrefix(text[i+1:], from) {
			b.WriteString(to)
			i += len(from)
		}
		i++
	}
	return b.String()
}
