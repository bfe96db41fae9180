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

package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/cmd/edgerewrite/commands"
	"github.com/walteh/edgerewrite/cmd/edgerewrite/opts"
	"github.com/walteh/edgerewrite/pkg/config"
	"github.com/walteh/edgerewrite/pkg/log"
	"github.com/walteh/edgerewrite/pkg/status"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool
	dryRun     bool
	backup     bool
	client     string
	jobs       int
	excludes   []string
}

// newRootOpts loads the configuration and applies the flag overrides
func newRootOpts(ctx context.Context, cmd *cobra.Command, flags *rootFlags, ro *opts.RootOpts) error {
	dir, err := os.Getwd()
	if err != nil {
		return errors.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Resolve(ctx, flags.configFile, dir)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	if flags.client != "" {
		cfg.Client = flags.client
	}
	if cmd.Flags().Changed("backup") {
		cfg.Backup = flags.backup
	}
	if flags.jobs > 0 {
		cfg.Jobs = flags.jobs
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating flags: %w", err)
	}

	ro.Config = cfg
	ro.Files = status.New(dir)
	ro.DryRun = flags.dryRun
	ro.Excludes = flags.excludes
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .edgerewrite.{hcl,yaml,yml,json} in the working directory)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "show a diff instead of writing")
	cmd.PersistentFlags().BoolVar(&flags.backup, "backup", false, "copy each file to <file>"+status.BackupSuffix+" before writing")
	cmd.PersistentFlags().StringVar(&flags.client, "client", "", "identifier of the client object (default from config)")
	cmd.PersistentFlags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of files processed at once (default from config)")
	cmd.PersistentFlags().StringSliceVar(&flags.excludes, "exclude", nil, "doublestar patterns of files to skip")
}

func logLevel(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// setupLogging puts a console zerolog logger and the report logger in the
// context. The report logger writes to the command's output.
func setupLogging(ctx context.Context, cmd *cobra.Command, debug bool) context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(logLevel(debug)).
		With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)
	return log.NewContext(ctx, log.New(cmd.OutOrStdout(), logLevel(debug)))
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	ro := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "edgerewrite",
		Short: "Migrate EdgeWorker sources to the new agent activity API",
		Long: `edgerewrite rewrites TypeScript sources from the legacy
createAgentActivity({ agentSessionId, content }) call idioms to the
two-argument form, replaces known literal blocks and applies the
method-signature changes of the client upgrade.

Every command takes files or doublestar globs, for example:

  edgerewrite run 'src/**/*.ts'
  edgerewrite check --exclude '**/*.test.ts' 'src/**/*.ts'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), cmd, flags.debug)
			cmd.SetContext(ctx)
			return newRootOpts(ctx, cmd, flags, ro)
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewRunCmd(ro),
		commands.NewActivityCmd(ro),
		commands.NewBlocksCmd(ro),
		commands.NewSignaturesCmd(ro),
		commands.NewCheckCmd(ro),
		commands.NewRestoreCmd(ro),
		commands.NewCleanCmd(ro),
		newVersionCmd(),
	)

	return cmd
}
