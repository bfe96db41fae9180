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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/pkg/idiom"
	"github.com/walteh/edgerewrite/pkg/text"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
//
//	client = "linearClient"
//	passes = ["activity", "signatures"]
//
//	block "greeting" {
//	  old = "Hello"
//	  new = "Hi"
//	}
//
// Literal blocks holding tabs should use a plain <<EOT heredoc; the
// indented <<-EOT form strips leading whitespace.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, ".edgerewrite.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// defaults are exposed as variables, e.g. `client = default_client`
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_client": cty.StringVal(idiom.DefaultClient),
			"default_enum":   cty.StringVal(idiom.DefaultEnum),
		},
	}

	type hclConfig struct {
		Client       string            `hcl:"client,optional"`
		Enum         string            `hcl:"enum,optional"`
		ContentTypes map[string]string `hcl:"content_types,optional"`
		Probes       []string          `hcl:"probes,optional"`
		Passes       []string          `hcl:"passes,optional"`
		Backup       bool              `hcl:"backup,optional"`
		Jobs         int               `hcl:"jobs,optional"`
		NoBuiltin    bool              `hcl:"no_builtin_blocks,optional"`
		RulesFile    string            `hcl:"rules_file,optional"`
		Blocks       []struct {
			Name string `hcl:"name,label"`
			Old  string `hcl:"old"`
			New  string `hcl:"new"`
		} `hcl:"block,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Client:       hclCfg.Client,
		Enum:         hclCfg.Enum,
		ContentTypes: hclCfg.ContentTypes,
		Probes:       hclCfg.Probes,
		Passes:       hclCfg.Passes,
		Backup:       hclCfg.Backup,
		Jobs:         hclCfg.Jobs,
		NoBuiltin:    hclCfg.NoBuiltin,
		RulesFile:    hclCfg.RulesFile,
	}
	for _, b := range hclCfg.Blocks {
		cfg.Blocks = append(cfg.Blocks, text.LiteralRule{Name: b.Name, Old: b.Old, New: b.New})
	}

	return cfg, nil
}
