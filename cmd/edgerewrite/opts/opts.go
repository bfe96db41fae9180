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

package opts

import (
	"context"

	"github.com/walteh/edgerewrite/pkg/config"
	"github.com/walteh/edgerewrite/pkg/log"
	"github.com/walteh/edgerewrite/pkg/operation"
	"github.com/walteh/edgerewrite/pkg/status"
)

// RootOpts contains shared options used by all commands. It is filled in
// once the root flags are parsed.
type RootOpts struct {
	Config   *config.Config
	Files    *status.Manager
	DryRun   bool
	Excludes []string
}

// Targets expands the command arguments to the files to process.
func (o *RootOpts) Targets(args []string) ([]string, error) {
	return operation.ExpandTargets(args, o.Excludes)
}

// Options builds the per-file options. dryRun is or-ed with --dry-run.
func (o *RootOpts) Options(dryRun bool) operation.Options {
	return operation.Options{
		Files:  o.Files,
		DryRun: o.DryRun || dryRun,
		Backup: o.Config.Backup,
		Probes: o.Config.Probes,
	}
}

// Rewrite runs the named passes over the targets and reports every file to
// the logger in ctx.
func (o *RootOpts) Rewrite(ctx context.Context, command string, names []string, args []string, dryRun bool) (*operation.Summary, error) {
	paths, err := o.Targets(args)
	if err != nil {
		return nil, err
	}

	passes, err := operation.BuildPasses(ctx, o.Config, names)
	if err != nil {
		return nil, err
	}

	logger := log.FromContext(ctx)
	opts := o.Options(dryRun)
	logger.StartRun(ctx, log.RunInfo{
		Command: command,
		Passes:  names,
		Files:   len(paths),
		DryRun:  opts.DryRun,
	})

	runner := operation.NewRunner(o.Config.Jobs, o.Files, logger)
	summary, err := runner.Run(ctx, paths, passes, opts)
	if summary != nil {
		logger.EndRun(ctx, summary)
	}
	return summary, err
}
