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
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// RuleResult reports what a single rule did
type RuleResult struct {
	// Name of the rule
	Name string

	// Found is false when the rule matched nothing
	Found bool

	// Count is the number of replacements the rule made
	Count int
}

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// Rules holds one entry per applied rule, in order
	Rules []RuleResult

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// NotFound returns the names of the rules that matched nothing.
func (r *ReplacementResult) NotFound() []string {
	var names []string
	for _, rule := range r.Rules {
		if !rule.Found {
			names = append(names, rule.Name)
		}
	}
	return names
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies a set of replacement rules to the content
	ReplaceText(ctx context.Context, content io.Reader, rules []Rule) (*ReplacementResult, error)

	// ValidateRules checks that all rules are valid
	ValidateRules(rules []Rule) error
}

var _ TextReplacer = (*Replacer)(nil)

// Replacer applies rules one after the other, each on the output of the last
type Replacer struct{}

// NewReplacer creates a new Replacer
func NewReplacer() *Replacer {
	return &Replacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *Replacer) ReplaceText(ctx context.Context, content io.Reader, rules []Rule) (*ReplacementResult, error) {
	logger := zerolog.Ctx(ctx)

	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	if err := r.ValidateRules(rules); err != nil {
		return nil, err
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	currentContent := string(originalContent)
	for _, rule := range rules {
		newContent, n, err := rule.Apply(currentContent)
		if err != nil {
			return nil, errors.Errorf("applying rule %s: %w", rule.RuleName(), err)
		}

		result.Rules = append(result.Rules, RuleResult{
			Name:  rule.RuleName(),
			Found: n > 0,
			Count: n,
		})
		logger.Debug().Str("rule", rule.RuleName()).Int("count", n).Msg("applied rule")

		if n > 0 {
			result.WasModified = result.WasModified || newContent != currentContent
			result.ReplacementCount += n
		}
		currentContent = newContent
	}

	result.ModifiedContent = []byte(currentContent)
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *Replacer) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// ReplaceLiteral applies literal block rules to content.
func ReplaceLiteral(ctx context.Context, content string, rules []LiteralRule) (*ReplacementResult, error) {
	return NewReplacer().ReplaceText(ctx, strings.NewReader(content), LiteralRules(rules))
}

// ReplaceRegex applies regex rules to content.
func ReplaceRegex(ctx context.Context, content string, rules []RegexRule) (*ReplacementResult, error) {
	return NewReplacer().ReplaceText(ctx, strings.NewReader(content), RegexRules(rules))
}
