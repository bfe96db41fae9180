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
	"github.com/walteh/edgerewrite/pkg/operation"
)

// NewRunCmd creates the command that applies every configured pass
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file|glob>...",
		Short: "Apply every configured pass",
		Long: `Run applies the configured passes (by default blocks, activity and
signatures, in that order) to each file.
It will:
1. Read each file once
2. Apply the passes in memory
3. Write the file once, atomically, if anything changed
4. Report each fix as fixed or not found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if _, err := opts.Rewrite(ctx, "run", opts.Config.Passes, args, false); err != nil {
				return errors.Errorf("running passes: %w", err)
			}
			return nil
		},
	}

	return cmd
}

// newPassCmd creates a command that applies a single pass
func newPassCmd(opts *opts.RootOpts, pass, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   pass + " <file|glob>...",
		Short: short,
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if _, err := opts.Rewrite(ctx, pass, []string{pass}, args, false); err != nil {
				return errors.Errorf("running %s pass: %w", pass, err)
			}
			return nil
		},
	}

	return cmd
}

// NewActivityCmd creates the command that rewrites the createAgentActivity idioms
func NewActivityCmd(opts *opts.RootOpts) *cobra.Command {
	return newPassCmd(opts, operation.PassActivity,
		"Rewrite createAgentActivity call idioms",
		`Activity rewrites the bound-call, bare-call and input-variable forms of
createAgentActivity to the two-argument call, collapsing the result.success
branch to its log call. Candidates that do not fit exactly are reported and
left as they are.`)
}

// NewBlocksCmd creates the command that replaces the known literal blocks
func NewBlocksCmd(opts *opts.RootOpts) *cobra.Command {
	return newPassCmd(opts, operation.PassBlocks,
		"Replace known literal blocks",
		`Blocks replaces the built-in EdgeWorker blocks, the blocks of the rules
file and the blocks of the config file. A block must match byte for byte;
a block that does not is reported as not found.`)
}

// NewSignaturesCmd creates the command that applies the method-signature rewrites
func NewSignaturesCmd(opts *opts.RootOpts) *cobra.Command {
	return newPassCmd(opts, operation.PassSignatures,
		"Apply the client method-signature changes",
		`Signatures rewrites fetchComments, fetchComment and fetchWorkflowStates
calls to their positional forms and renames .parent to .parentId.`)
}
