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
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// 📚 Vocabulary maps content-type literals ("thought") to enum constant names ("Thought").
type Vocabulary map[string]string

// DefaultContentTypes is the content-type vocabulary of the agent activity API.
var DefaultContentTypes = []string{"thought", "action", "response", "error", "elicitation", "prompt"}

// 🏭 NewVocabulary builds a vocabulary mapping each type to its capitalized form.
func NewVocabulary(types ...string) Vocabulary {
	v := make(Vocabulary, len(types))
	for _, t := range types {
		v[t] = Capitalize(t)
	}
	return v
}

// DefaultVocabulary returns a vocabulary for DefaultContentTypes.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(DefaultContentTypes...)
}

// Constant returns the constant name for a content type. Types outside the
// vocabulary are not guessed at.
func (v Vocabulary) Constant(contentType string) (string, bool) {
	c, ok := v[contentType]
	return c, ok
}

// Types returns the known content types, sorted.
func (v Vocabulary) Types() []string {
	types := make([]string, 0, len(v))
	for t := range v {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Validate checks that every constant is a usable identifier.
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return errors.New("vocabulary is empty")
	}
	for _, t := range v.Types() {
		if t == "" {
			return errors.New("vocabulary has an empty content type")
		}
		if c := v[t]; !identifierRE.MatchString(c) {
			return errors.Errorf("content type %q maps to invalid constant %q", t, c)
		}
	}
	return nil
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
