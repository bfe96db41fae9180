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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/pkg/idiom"
	"github.com/walteh/edgerewrite/pkg/text"
)

// 🔧 Fix is one named rewrite a pass looked for
type Fix struct {
	Name  string
	Found bool
	Count int
}

// 📋 PassReport is what a single pass did to one file
type PassReport struct {
	Pass      string
	Fixes     []Fix
	Unmatched []idiom.Unmatched
	Changed   bool
}

// Applied returns the number of rewrites the pass made.
func (r PassReport) Applied() int {
	n := 0
	for _, f := range r.Fixes {
		n += f.Count
	}
	return n
}

// 🔌 Pass rewrites file content in memory. A pass that matches nothing
// returns the content unchanged; that is not an error.
type Pass interface {
	Name() string
	Apply(ctx context.Context, content string) (string, PassReport, error)
}

var (
	_ Pass = (*ActivityPass)(nil)
	_ Pass = (*BlocksPass)(nil)
	_ Pass = (*SignaturePass)(nil)
)

// 🎯 ActivityPass rewrites the createAgentActivity call idioms
type ActivityPass struct {
	matcher *idiom.Matcher
}

// NewActivityPass builds the idiom matcher for opts.
func NewActivityPass(opts idiom.Options) (*ActivityPass, error) {
	m, err := idiom.NewMatcher(opts)
	if err != nil {
		return nil, errors.Errorf("creating idiom matcher: %w", err)
	}
	return &ActivityPass{matcher: m}, nil
}

func (p *ActivityPass) Name() string {
	return PassActivity
}

func (p *ActivityPass) Apply(ctx context.Context, content string) (string, PassReport, error) {
	out, res := p.matcher.Rewrite(ctx, content)

	report := PassReport{
		Pass:      PassActivity,
		Unmatched: res.Unmatched,
		Changed:   out != content,
	}
	for _, shape := range idiom.Shapes {
		n := res.Count(shape)
		report.Fixes = append(report.Fixes, Fix{Name: shape.String(), Found: n > 0, Count: n})
	}
	return out, report, nil
}

// 🧱 BlocksPass replaces exact literal blocks
type BlocksPass struct {
	rules []text.LiteralRule
}

func NewBlocksPass(rules []text.LiteralRule) (*BlocksPass, error) {
	if err := text.NewReplacer().ValidateRules(text.LiteralRules(rules)); err != nil {
		return nil, errors.Errorf("validating blocks: %w", err)
	}
	return &BlocksPass{rules: rules}, nil
}

func (p *BlocksPass) Name() string {
	return PassBlocks
}

func (p *BlocksPass) Apply(ctx context.Context, content string) (string, PassReport, error) {
	res, err := text.ReplaceLiteral(ctx, content, p.rules)
	if err != nil {
		return content, PassReport{}, errors.Errorf("replacing blocks: %w", err)
	}
	for _, name := range res.NotFound() {
		zerolog.Ctx(ctx).Debug().Str("block", name).Msg("block not found")
	}
	return string(res.ModifiedContent), ruleReport(PassBlocks, res), nil
}

// 🖊️ SignaturePass applies the method-signature regex rules
type SignaturePass struct {
	rules []text.RegexRule
}

// NewSignaturePass combines the built-in signature rules for client with
// any extra rules.
func NewSignaturePass(client string, extra []text.RegexRule) (*SignaturePass, error) {
	rules := append(text.SignatureRules(client), extra...)
	if err := text.NewReplacer().ValidateRules(text.RegexRules(rules)); err != nil {
		return nil, errors.Errorf("validating signature rules: %w", err)
	}
	return &SignaturePass{rules: rules}, nil
}

func (p *SignaturePass) Name() string {
	return PassSignatures
}

func (p *SignaturePass) Apply(ctx context.Context, content string) (string, PassReport, error) {
	res, err := text.ReplaceRegex(ctx, content, p.rules)
	if err != nil {
		return content, PassReport{}, errors.Errorf("replacing signatures: %w", err)
	}
	return string(res.ModifiedContent), ruleReport(PassSignatures, res), nil
}

func ruleReport(pass string, res *text.ReplacementResult) PassReport {
	report := PassReport{Pass: pass, Changed: res.WasModified}
	for _, r := range res.Rules {
		report.Fixes = append(report.Fixes, Fix{Name: r.Name, Found: r.Found, Count: r.Count})
	}
	return report
}
