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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/pkg/idiom"
	"github.com/walteh/edgerewrite/pkg/text"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// pass names, in their default order
const (
	PassBlocks     = "blocks"
	PassActivity   = "activity"
	PassSignatures = "signatures"
)

var (
	// DefaultPasses is the order `run` applies the passes in. The built-in
	// blocks hold legacy idioms, so they go before the activity pass.
	DefaultPasses = []string{PassBlocks, PassActivity, PassSignatures}

	// DefaultProbes are counted before and after every file
	DefaultProbes = []string{"createAgentActivity", "result.success"}

	// FileNames are the config files Find looks for, in order
	FileNames = []string{".edgerewrite.hcl", ".edgerewrite.yaml", ".edgerewrite.yml", ".edgerewrite.json"}
)

// 📚 Config represents the complete configuration
type Config struct {
	// Client is the receiver of the activity calls
	Client string `json:"client,omitempty" yaml:"client,omitempty"`

	// Enum holds the content type constants
	Enum string `json:"enum,omitempty" yaml:"enum,omitempty"`

	// ContentTypes adds type literal to constant mappings
	ContentTypes map[string]string `json:"content_types,omitempty" yaml:"content_types,omitempty"`

	// Probes are substrings counted before and after every file
	Probes []string `json:"probes,omitempty" yaml:"probes,omitempty"`

	// Passes run by `run`, in order
	Passes []string `json:"passes,omitempty" yaml:"passes,omitempty"`

	// Backup keeps a .bak copy of every rewritten file
	Backup bool `json:"backup,omitempty" yaml:"backup,omitempty"`

	// Jobs is the number of files processed in parallel
	Jobs int `json:"jobs,omitempty" yaml:"jobs,omitempty"`

	// NoBuiltin drops the built-in literal blocks
	NoBuiltin bool `json:"no_builtin_blocks,omitempty" yaml:"no_builtin_blocks,omitempty"`

	// Blocks are extra literal blocks
	Blocks []text.LiteralRule `json:"blocks,omitempty" yaml:"blocks,omitempty"`

	// RulesFile names an extra rule set, relative to the config file
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`

	location string
}

// 🏭 Default returns the configuration used when no config file exists
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// 🔍 Find returns the first config file present in dir
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🎯 Resolve loads path, or the config file found in dir when path is
// empty. No config file at all means defaults.
func Resolve(ctx context.Context, path, dir string) (*Config, error) {
	if path == "" {
		found, ok := Find(dir)
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file, using defaults")
			return Default(), nil
		}
		path = found
	}
	return Load(ctx, path)
}

// SetDefaults fills every unset field.
func (cfg *Config) SetDefaults() {
	if cfg.Client == "" {
		cfg.Client = idiom.DefaultClient
	}
	if cfg.Enum == "" {
		cfg.Enum = idiom.DefaultEnum
	}
	if len(cfg.Probes) == 0 {
		cfg.Probes = append([]string(nil), DefaultProbes...)
	}
	if len(cfg.Passes) == 0 {
		cfg.Passes = append([]string(nil), DefaultPasses...)
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if err := cfg.IdiomOptions().Validate(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, p := range cfg.Passes {
		switch p {
		case PassActivity, PassBlocks, PassSignatures:
		default:
			return errors.Errorf("unknown pass %q", p)
		}
		if seen[p] {
			return errors.Errorf("pass %q listed twice", p)
		}
		seen[p] = true
	}

	for _, probe := range cfg.Probes {
		if strings.TrimSpace(probe) == "" {
			return errors.New("probes must not be blank")
		}
	}

	if err := text.NewReplacer().ValidateRules(text.LiteralRules(cfg.Blocks)); err != nil {
		return errors.Errorf("blocks: %w", err)
	}

	return nil
}

// IdiomOptions builds the matcher options. Configured content types extend
// the default vocabulary.
func (cfg *Config) IdiomOptions() idiom.Options {
	vocab := idiom.DefaultVocabulary()
	for typ, constant := range cfg.ContentTypes {
		vocab[typ] = constant
	}
	return idiom.Options{
		Client:     cfg.Client,
		Enum:       cfg.Enum,
		Vocabulary: vocab,
	}
}

// RulesPath returns RulesFile resolved against the config file's directory.
func (cfg *Config) RulesPath() string {
	if cfg.RulesFile == "" || filepath.IsAbs(cfg.RulesFile) || cfg.location == "" {
		return cfg.RulesFile
	}
	return filepath.Join(filepath.Dir(cfg.location), cfg.RulesFile)
}

// Location is the file the config was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}
