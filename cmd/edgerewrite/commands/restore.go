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

package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/cmd/edgerewrite/opts"
	"github.com/walteh/edgerewrite/pkg/log"
	"github.com/walteh/edgerewrite/pkg/operation"
)

// NewRestoreCmd creates the command that puts backups back in place
func NewRestoreCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file|glob>...",
		Short: "Restore files from their .bak backups",
		Long: `Restore replaces each file with the backup a --backup run left next to
it, then removes the backup. Files without a backup are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			paths, err := opts.Targets(args)
			if err != nil {
				return err
			}

			logger.Header("restoring backups")
			restored, skipped, err := operation.RestoreBackups(ctx, opts.Files, paths)
			for _, p := range restored {
				logger.Successf("restored %s", p)
			}
			if err != nil {
				return errors.Errorf("restoring backups: %w", err)
			}
			if len(skipped) > 0 {
				logger.Warningf("%d files had no backup", len(skipped))
			}
			return nil
		},
	}

	return cmd
}
