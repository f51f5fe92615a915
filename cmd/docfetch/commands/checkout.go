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

	"github.com/spf13/cobra"
	"github.com/walteh/docfetch/cmd/docfetch/opts"
	"gitlab.com/tozd/go/errors"
)

type repoFlags struct {
	branch string
	token  string
}

func (f *repoFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.branch, "branch", "b", "", "branch to check out (default: the configured default branch)")
	cmd.Flags().StringVar(&f.token, "token", "", "git token (default: checkout.token, then GITHUB_TOKEN)")
}

// NewCheckoutCmd creates the checkout command
func NewCheckoutCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "checkout <repo-url>",
		Short: "Clone or refresh the cached checkout of a repository",
		Long: `Checkout keeps one clone per host, owner, repository and branch under the checkout root.
It will:
1. Clone when no cached copy exists
2. Otherwise fetch and fast-forward the cached copy
3. Delete and clone again once if the refresh fails`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.Checkout.Checkout(cmd.Context(), args[0], flags.branch, flags.token)
			if err != nil {
				return errors.Errorf("checking out %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}

// NewLastCommitCmd creates the last-commit command
func NewLastCommitCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "last-commit <repo-url>",
		Short: "Print the HEAD commit time of a repository in unix seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := opts.Checkout.LastCommitTimestamp(cmd.Context(), args[0], flags.branch, flags.token)
			if err != nil {
				return errors.Errorf("reading last commit of %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ts)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}
