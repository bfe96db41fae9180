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

// Package rules holds named rule sets for the blocks and signatures passes,
// including the built-in EdgeWorker set compiled into the binary.
package rules

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/edgerewrite/pkg/text"
)

//go:embed edgeworker.yaml
var edgeworker []byte

// 📚 Set is a named collection of literal blocks and regex rules
type Set struct {
	Name   string             `json:"name" yaml:"name"`
	Blocks []text.LiteralRule `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Rules  []text.RegexRule   `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// 🎯 Default returns the built-in EdgeWorker rule set
func Default() (*Set, error) {
	set, err := Parse(edgeworker, ".yaml")
	if err != nil {
		return nil, errors.Errorf("parsing built-in rules: %w", err)
	}
	return set, nil
}

// 📂 Load reads a rule set from a YAML or JSON file
func Load(ctx context.Context, path string) (*Set, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading rule set")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading rule file: %w", err)
	}

	set, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Errorf("parsing rule file %s: %w", path, err)
	}
	if set.Name == "" {
		set.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return set, nil
}

// 📝 Parse decodes a rule set; ext selects the format (".json" or YAML)
func Parse(data []byte, ext string) (*Set, error) {
	var set Set
	switch strings.ToLower(ext) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&set); err != nil {
			return nil, errors.Errorf("parsing JSON: %w", err)
		}
	case ".yaml", ".yml", "":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&set); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	default:
		return nil, errors.Errorf("unsupported rule file extension %q", ext)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// 🔍 Validate checks every rule and rejects duplicate names
func (s *Set) Validate() error {
	seen := map[string]bool{}
	for i := range s.Blocks {
		if err := s.Blocks[i].Validate(); err != nil {
			return errors.Errorf("block %d: %w", i, err)
		}
		if seen[s.Blocks[i].Name] {
			return errors.Errorf("duplicate rule name %q", s.Blocks[i].Name)
		}
		seen[s.Blocks[i].Name] = true
	}
	for i := range s.Rules {
		if err := s.Rules[i].Validate(); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
		if seen[s.Rules[i].Name] {
			return errors.Errorf("duplicate rule name %q", s.Rules[i].Name)
		}
		seen[s.Rules[i].Name] = true
	}
	return nil
}

// Merge concatenates sets in order. Nil sets are skipped.
func Merge(name string, sets ...*Set) *Set {
	out := &Set{Name: name}
	for _, s := range sets {
		if s == nil {
			continue
		}
		out.Blocks = append(out.Blocks, s.Blocks...)
		out.Rules = append(out.Rules, s.Rules...)
	}
	return out
}
