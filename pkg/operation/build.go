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

	"github.com/walteh/edgerewrite/pkg/config"
	"github.com/walteh/edgerewrite/pkg/rules"
)

// pass names, shared with the configuration
const (
	PassActivity   = config.PassActivity
	PassBlocks     = config.PassBlocks
	PassSignatures = config.PassSignatures
)

// 🏗️ BuildPasses assembles the named passes from cfg, in the order given.
// The blocks pass gets the built-in EdgeWorker blocks (unless disabled), the
// blocks of cfg.RulesFile and cfg.Blocks, in that order. Regex rules from the
// rules file extend the signatures pass.
func BuildPasses(ctx context.Context, cfg *config.Config, names []string) ([]Pass, error) {
	logger := zerolog.Ctx(ctx)

	set, err := loadRules(ctx, cfg)
	if err != nil {
		return nil, err
	}

	passes := make([]Pass, 0, len(names))
	for _, name := range names {
		var (
			p   Pass
			err error
		)
		switch name {
		case PassActivity:
			p, err = NewActivityPass(cfg.IdiomOptions())
		case PassBlocks:
			p, err = NewBlocksPass(set.Blocks)
		case PassSignatures:
			p, err = NewSignaturePass(cfg.Client, set.Rules)
		default:
			return nil, errors.Errorf("unknown pass %q", name)
		}
		if err != nil {
			return nil, errors.Errorf("building %s pass: %w", name, err)
		}
		passes = append(passes, p)
	}

	logger.Debug().
		Strs("passes", names).
		Int("blocks", len(set.Blocks)).
		Int("rules", len(set.Rules)).
		Msg("built passes")
	return passes, nil
}

func loadRules(ctx context.Context, cfg *config.Config) (*rules.Set, error) {
	var sets []*rules.Set

	if !cfg.NoBuiltin {
		builtin, err := rules.Default()
		if err != nil {
			return nil, err
		}
		sets = append(sets, builtin)
	}

	if path := cfg.RulesPath(); path != "" {
		extra, err := rules.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading rules file: %w", err)
		}
		sets = append(sets, extra)
	}

	sets = append(sets, &rules.Set{Name: "config", Blocks: cfg.Blocks})

	merged := rules.Merge("effective", sets...)
	if err := merged.Validate(); err != nil {
		return nil, errors.Errorf("validating rules: %w", err)
	}
	return merged, nil
}
