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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	propertyKeyRE   = regexp.MustCompile(`^(?:([A-Za-z_$][\w$]*)|"([^"\\]*)"|'([^'\\]*)')\s*(:?)`)
	stringLiteralRE = regexp.MustCompile(`^(?:"([^"\\]*)"|'([^'\\]*)')$`)
)

// property is one "key: value" entry of an object literal.
type property struct {
	key     string
	value   string
	keyAt   int // offset of the key in the source
	valueAt int // offset of the value in the source
}

// objectLiteral is a parsed object literal whose braces are at open and close.
type objectLiteral struct {
	open, close int
	props       []property
}

func (o *objectLiteral) get(key string) (property, bool) {
	for _, p := range o.props {
		if p.key == key {
			return p, true
		}
	}
	return property{}, false
}

// hasExactly reports whether the literal has exactly the given keys, in any order.
func (o *objectLiteral) hasExactly(keys ...string) bool {
	if len(o.props) != len(keys) {
		return false
	}
	for _, k := range keys {
		if _, ok := o.get(k); !ok {
			return false
		}
	}
	return true
}

// parseObject parses the object literal whose opening brace is at src[open].
// Only plain properties and shorthand properties are understood. Spreads,
// methods, computed keys and comments between properties are rejected.
func parseObject(src string, open int) (*objectLiteral, error) {
	if open >= len(src) || src[open] != '{' {
		return nil, errors.Errorf("expected '{' at offset %d", open)
	}
	end, err := matchClose(src, open)
	if err != nil {
		return nil, errors.Errorf("delimiting object literal: %w", err)
	}

	parts, err := splitTopLevel(src, open+1, end)
	if err != nil {
		return nil, errors.Errorf("splitting object literal: %w", err)
	}

	obj := &objectLiteral{open: open, close: end}
	for _, part := range parts {
		prop, err := parseProperty(src, part)
		if err != nil {
			return nil, err
		}
		obj.props = append(obj.props, prop)
	}
	return obj, nil
}

func parseProperty(src string, s span) (property, error) {
	raw := src[s.start:s.end]
	lead := len(raw) - len(strings.TrimLeft(raw, whitespace))
	text := strings.TrimSpace(raw)
	at := s.start + lead

	switch {
	case strings.HasPrefix(text, "//"), strings.HasPrefix(text, "/*"):
		return property{}, errors.Errorf("comment inside object literal at line %d", lineOf(src, at))
	case strings.HasPrefix(text, "..."):
		return property{}, errors.Errorf("spread inside object literal at line %d", lineOf(src, at))
	}

	m := propertyKeyRE.FindStringSubmatch(text)
	if m == nil {
		return property{}, errors.Errorf("unsupported property %q at line %d", firstLine(text), lineOf(src, at))
	}
	key := m[1] + m[2] + m[3]

	if m[4] == "" {
		// shorthand { body }
		if m[1] == "" || len(m[0]) != len(text) {
			return property{}, errors.Errorf("unsupported property %q at line %d", firstLine(text), lineOf(src, at))
		}
		return property{key: key, value: key, keyAt: at, valueAt: at}, nil
	}

	rest := text[len(m[0]):]
	value := strings.TrimSpace(rest)
	if value == "" {
		return property{}, errors.Errorf("property %q has no value at line %d", key, lineOf(src, at))
	}
	valueAt := at + len(m[0]) + (len(rest) - len(strings.TrimLeft(rest, whitespace)))
	return property{key: key, value: value, keyAt: at, valueAt: valueAt}, nil
}

// stringLiteral unquotes a single- or double-quoted literal without escapes.
func stringLiteral(expr string) (string, bool) {
	m := stringLiteralRE.FindStringSubmatch(expr)
	if m == nil {
		return "", false
	}
	return m[1] + m[2], true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
