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
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/cmd/edgerewrite/opts"
	"github.com/walteh/edgerewrite/pkg/log"
	"github.com/walteh/edgerewrite/pkg/operation"
)

// ErrLegacyRemains is returned by check when a file has not converged
var ErrLegacyRemains = errors.Base("legacy idioms remain")

// NewCheckCmd creates the command that reports what a run would still change
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file|glob>...",
		Short: "Report legacy idioms without writing",
		Long: `Check runs the configured passes without writing and prints, per file,
the rewrites still pending, the candidates left for review and the probe
counts. It exits non-zero when anything remains.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx).ShowDiff(false)

			summary, err := opts.Rewrite(ctx, "check", opts.Config.Passes, args, true)
			if err != nil {
				return errors.Errorf("checking files: %w", err)
			}

			table, err := pterm.DefaultTable.
				WithHasHeader().
				WithData(checkTable(summary, opts.Config.Probes)).
				Srender()
			if err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			logger.LogNewline()
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if n := summary.Remaining(); n > 0 {
				logger.Warningf("%d pending in %d files", n, pendingFiles(summary))
				return errors.WithStack(ErrLegacyRemains)
			}
			return nil
		},
	}

	return cmd
}

func checkTable(summary *operation.Summary, probes []string) pterm.TableData {
	header := []string{"File", "Pending", "Review"}
	header = append(header, probes...)
	data := pterm.TableData{header}

	for _, r := range summary.Reports {
		if r == nil {
			continue
		}
		row := []string{r.Path, strconv.Itoa(r.Applied()), strconv.Itoa(r.Unmatched())}
		for _, p := range r.Before {
			row = append(row, strconv.Itoa(p.Count))
		}
		data = append(data, row)
	}
	return data
}

func pendingFiles(summary *operation.Summary) int {
	n := 0
	for _, r := range summary.Reports {
		if r != nil && r.Remaining() > 0 {
			n++
		}
	}
	return n
}
