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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/edgerewrite/pkg/idiom"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing config file")
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: ".edgerewrite.yaml",
			config: `
client: this.linear
enum: ActivityType
content_types:
  note: Note
probes:
  - createAgentActivity
passes: [activity, signatures]
backup: true
jobs: 4
blocks:
  - name: greeting
    old: "Hello"
    new: "Hi"
rules_file: extra.yaml
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "this.linear", cfg.Client, "client should match")
				assert.Equal(t, "ActivityType", cfg.Enum, "enum should match")
				assert.Equal(t, map[string]string{"note": "Note"}, cfg.ContentTypes)
				assert.Equal(t, []string{"createAgentActivity"}, cfg.Probes)
				assert.Equal(t, []string{PassActivity, PassSignatures}, cfg.Passes)
				assert.True(t, cfg.Backup, "backup should be true")
				assert.Equal(t, 4, cfg.Jobs)
				require.Len(t, cfg.Blocks, 1)
				assert.Equal(t, "greeting", cfg.Blocks[0].Name)
				assert.Equal(t, filepath.Join(filepath.Dir(cfg.Location()), "extra.yaml"), cfg.RulesPath())
			},
		},
		{
			name:   "yaml_empty_uses_defaults",
			file:   ".edgerewrite.yml",
			config: ``,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, idiom.DefaultClient, cfg.Client)
				assert.Equal(t, idiom.DefaultEnum, cfg.Enum)
				assert.Equal(t, DefaultPasses, cfg.Passes)
				assert.Equal(t, DefaultProbes, cfg.Probes)
				assert.Equal(t, 1, cfg.Jobs)
				assert.False(t, cfg.Backup)
			},
		},
		{
			name: "hcl_full",
			file: ".edgerewrite.hcl",
			config: `
client = default_client
enum   = "AgentActivityContentType"
passes = ["blocks"]
backup = true
content_types = {
  note = "Note"
}

block "indented" {
  old = <<EOT
	const a = 1;
EOT
  new = "\tconst a = 2;\n"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "linearClient", cfg.Client)
				assert.Equal(t, []string{PassBlocks}, cfg.Passes)
				assert.True(t, cfg.Backup)
				assert.Equal(t, "Note", cfg.ContentTypes["note"])
				require.Len(t, cfg.Blocks, 1)
				assert.Equal(t, "indented", cfg.Blocks[0].Name)
				assert.Equal(t, "\tconst a = 1;\n", cfg.Blocks[0].Old, "heredoc keeps tabs")
				assert.Equal(t, "\tconst a = 2;\n", cfg.Blocks[0].New)
			},
		},
		{
			name: "json_with_comments",
			file: ".edgerewrite.json",
			config: `{
	// only the signature touch-ups
	"passes": ["signatures"],
	"probes": ["fetchComments", ".parent"], /* trailing comma */
}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{PassSignatures}, cfg.Passes)
				assert.Equal(t, []string{"fetchComments", ".parent"}, cfg.Probes)
				assert.Equal(t, idiom.DefaultClient, cfg.Client)
			},
		},
		{
			name:        "unknown_pass",
			file:        ".edgerewrite.yaml",
			config:      "passes: [activity, format]\n",
			errContains: `unknown pass "format"`,
		},
		{
			name:        "duplicate_pass",
			file:        ".edgerewrite.yaml",
			config:      "passes: [blocks, blocks]\n",
			errContains: `pass "blocks" listed twice`,
		},
		{
			name:        "bad_enum",
			file:        ".edgerewrite.yaml",
			config:      "enum: \"Agent Activity\"\n",
			errContains: "is not an identifier",
		},
		{
			name:        "blank_probe",
			file:        ".edgerewrite.yaml",
			config:      "probes: [\"  \"]\n",
			errContains: "probes must not be blank",
		},
		{
			name:        "invalid_block",
			file:        ".edgerewrite.yaml",
			config:      "blocks:\n  - name: same\n    old: a\n    new: a\n",
			errContains: "blocks: rule 0: same: old and new are identical",
		},
		{
			name:        "unknown_yaml_field",
			file:        ".edgerewrite.yaml",
			config:      "clients: x\n",
			errContains: "field clients not found",
		},
		{
			name:        "unknown_json_field",
			file:        ".edgerewrite.json",
			config:      `{"clients": "x"}`,
			errContains: `unknown field "clients"`,
		},
		{
			name:        "invalid_hcl",
			file:        ".edgerewrite.hcl",
			config:      `client = `,
			errContains: "parsing HCL",
		},
		{
			name:        "unknown_extension",
			file:        ".edgerewrite.toml",
			config:      `client = "x"`,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.config)

			cfg, err := Load(testContext(t), path)
			if tt.errContains != "" {
				require.Error(t, err, "Load should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			require.NotNil(t, cfg, "config should not be nil")
			assert.Equal(t, path, cfg.Location())
			tt.check(t, cfg)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("no_config_file", func(t *testing.T) {
		cfg, err := Resolve(testContext(t), "", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Empty(t, cfg.Location())
	})

	t.Run("finds_config_in_dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".edgerewrite.json"), []byte(`{"backup": true}`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".edgerewrite.yaml"), []byte("jobs: 3\n"), 0o644))

		cfg, err := Resolve(testContext(t), "", dir)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Jobs, "yaml comes before json")
		assert.False(t, cfg.Backup)
	})

	t.Run("explicit_path_must_exist", func(t *testing.T) {
		_, err := Resolve(testContext(t), filepath.Join(t.TempDir(), "missing.yaml"), ".")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}

func TestConfig_IdiomOptions(t *testing.T) {
	cfg := Default()
	cfg.ContentTypes = map[string]string{"note": "Note", "thought": "Musing"}

	opts := cfg.IdiomOptions()
	require.NoError(t, opts.Validate())

	c, ok := opts.Vocabulary.Constant("note")
	assert.True(t, ok)
	assert.Equal(t, "Note", c)

	c, ok = opts.Vocabulary.Constant("thought")
	assert.True(t, ok)
	assert.Equal(t, "Musing", c, "configured types override the defaults")

	c, ok = opts.Vocabulary.Constant("action")
	assert.True(t, ok)
	assert.Equal(t, "Action", c)
}

func TestConfig_RulesPath(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.RulesPath())

	cfg.RulesFile = "rules.yaml"
	assert.Equal(t, "rules.yaml", cfg.RulesPath(), "defaults resolve against the working directory")

	cfg.location = filepath.Join("repo", ".edgerewrite.hcl")
	assert.Equal(t, filepath.Join("repo", "rules.yaml"), cfg.RulesPath())

	abs := filepath.Join(string(filepath.Separator), "abs", "rules.yaml")
	cfg.RulesFile = abs
	assert.Equal(t, abs, cfg.RulesPath())
}
