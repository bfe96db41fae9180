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

// NewCleanCmd creates a new clean command
func NewCleanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <file|glob>...",
		Short: "Remove the .bak backups of files",
		Long: `Clean deletes the backups earlier --backup runs left next to the
given files. The files themselves are not touched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			paths, err := opts.Targets(args)
			if err != nil {
				return err
			}

			logger.Header("cleaning backups")
			removed, err := operation.CleanBackups(ctx, opts.Files, paths)
			for _, p := range removed {
				logger.Successf("removed %s", p)
			}
			if err != nil {
				return errors.Errorf("cleaning backups: %w", err)
			}
			if len(removed) == 0 {
				logger.Info("no backups found")
			}
			return nil
		},
	}

	return cmd
}
