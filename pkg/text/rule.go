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

package text

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Rule is a single named text rewrite.
type Rule interface {
	// RuleName identifies the rule in reports
	RuleName() string

	// Apply rewrites content and returns how many places changed
	Apply(content string) (string, int, error)

	// Validate checks the rule before it is applied
	Validate() error
}

// 🧱 LiteralRule replaces one exact block of text. Any drift in the source,
// even a single space, means the block is not found and nothing changes.
type LiteralRule struct {
	Name string `json:"name" yaml:"name" hcl:"name,label"`
	Old  string `json:"old" yaml:"old" hcl:"old"`
	New  string `json:"new" yaml:"new" hcl:"new"`
}

func (r *LiteralRule) RuleName() string {
	return r.Name
}

// Apply replaces the first verbatim occurrence of Old.
func (r *LiteralRule) Apply(content string) (string, int, error) {
	if !strings.Contains(content, r.Old) {
		return content, 0, nil
	}
	return strings.Replace(content, r.Old, r.New, 1), 1, nil
}

func (r *LiteralRule) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Old == "" {
		return errors.Errorf("%s: old is required", r.Name)
	}
	if r.Old == r.New {
		return errors.Errorf("%s: old and new are identical", r.Name)
	}
	return nil
}

// 🔎 RegexRule replaces every match of Pattern with Replace, which may use
// ${1} style group references.
type RegexRule struct {
	Name    string `json:"name" yaml:"name" hcl:"name,label"`
	Pattern string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Replace string `json:"replace" yaml:"replace" hcl:"replace"`

	re *regexp.Regexp
}

func (r *RegexRule) RuleName() string {
	return r.Name
}

func (r *RegexRule) compile() (*regexp.Regexp, error) {
	if r.re != nil {
		return r.re, nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, errors.Errorf("%s: compiling pattern: %w", r.Name, err)
	}
	r.re = re
	return re, nil
}

// Apply replaces every match globally.
func (r *RegexRule) Apply(content string) (string, int, error) {
	re, err := r.compile()
	if err != nil {
		return content, 0, err
	}
	n := len(re.FindAllStringIndex(content, -1))
	if n == 0 {
		return content, 0, nil
	}
	return re.ReplaceAllString(content, r.Replace), n, nil
}

func (r *RegexRule) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Pattern == "" {
		return errors.Errorf("%s: pattern is required", r.Name)
	}
	_, err := r.compile()
	return err
}

// LiteralRules adapts a slice of literal rules to the Rule interface.
func LiteralRules(rules []LiteralRule) []Rule {
	out := make([]Rule, 0, len(rules))
	for i := range rules {
		out = append(out, &rules[i])
	}
	return out
}

// RegexRules adapts a slice of regex rules to the Rule interface.
func RegexRules(rules []RegexRule) []Rule {
	out := make([]Rule, 0, len(rules))
	for i := range rules {
		out = append(out, &rules[i])
	}
	return out
}
