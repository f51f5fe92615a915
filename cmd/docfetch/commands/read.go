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
	"github.com/walteh/docfetch/cmd/docfetch/opts"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
)

// NewReadCmd creates the read command
func NewReadCmd(opts *opts.RootOpts) *cobra.Command {
	var readOpts reading.ReadOptions

	cmd := &cobra.Command{
		Use:   "read <url>",
		Short: "Read a single file through the matching reader",
		Long: `Read picks the first registered reader whose predicate matches the URL and writes
the raw bytes to stdout. GitHub hosts use the contents API when a token is present,
otherwise the raw endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.Reader.Read(cmd.Context(), args[0], readOpts)
			if err != nil {
				return errors.Errorf("reading %s: %w", args[0], err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&readOpts.Token, "token", "", "per-request token")
	cmd.Flags().StringVar(&readOpts.AppToken, "app-token", "", "GitHub App installation token, sent as a bearer token")

	return cmd
}
