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
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/docfetch/cmd/docfetch/opts"
	"github.com/walteh/docfetch/pkg/log"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
)

type treeFlags struct {
	ref     string
	filters []string
	out     string
	archive string
	list    bool
}

// NewTreeCmd creates the tree command
func NewTreeCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &treeFlags{}

	cmd := &cobra.Command{
		Use:   "tree <repo-url>",
		Short: "Materialize a filtered repository tree",
		Long: `Tree downloads a repository archive (or walks a local directory), keeps the entries
under --filter, and either writes them to --out, packs them into --archive, or lists them.
It will:
1. Resolve the reader for the URL
2. Stream the archive and strip its top-level folder
3. Write the matched files`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tree, err := opts.Reader.ReadTree(ctx, args[0], flags.ref, flags.filters)
			if err != nil {
				return errors.Errorf("reading tree %s: %w", args[0], err)
			}

			if flags.list {
				return renderTree(cmd, tree)
			}

			if flags.archive != "" {
				data, err := tree.Archive(ctx)
				if err != nil {
					return errors.Errorf("packing tree: %w", err)
				}
				if err := os.WriteFile(flags.archive, data, 0o644); err != nil {
					return errors.Errorf("writing %s: %w", flags.archive, err)
				}
				opts.Console.Successf("wrote %d files to %s", len(tree.Files()), flags.archive)
				return nil
			}

			opts.Console.StartTree(ctx, log.TreeOperation{Location: args[0], Ref: flags.ref, Destination: flags.out})
			defer opts.Console.EndTree(ctx)

			source := sourceOf(opts, args[0])
			dir, err := tree.Dir(ctx, flags.out)
			if err != nil {
				for _, f := range tree.Files() {
					opts.Console.LogFile(ctx, log.FileEntry{Path: f.Path, Source: source, Status: "failed", IsFailed: true})
				}
				return errors.Errorf("writing tree: %w", err)
			}
			for _, f := range tree.Files() {
				opts.Console.LogFile(ctx, log.FileEntry{Path: f.Path, Source: source, Status: "written", IsWritten: true})
			}

			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.ref, "ref", "", "branch, tag or commit (default: from the URL, then the default branch)")
	cmd.Flags().StringSliceVarP(&flags.filters, "filter", "f", nil, "path prefixes or globs to keep (repeatable)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output directory (default: a new temp directory)")
	cmd.Flags().StringVar(&flags.archive, "archive", "", "write a .tar.gz instead of a directory")
	cmd.Flags().BoolVar(&flags.list, "list", false, "only list the matched files")

	return cmd
}

func renderTree(cmd *cobra.Command, tree *reading.TreeResult) error {
	data := pterm.TableData{{"Path", "Bytes"}}
	for _, f := range tree.Files() {
		content, err := f.Content()
		if err != nil {
			return errors.Errorf("loading %s: %w", f.Path, err)
		}
		data = append(data, []string{f.Path, strconv.Itoa(len(content))})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
}

// sourceOf names the reader kind that serves url, for console output only.
func sourceOf(opts *opts.RootOpts, url string) string {
	reg, ok := opts.Reader.(*reading.Registry)
	if !ok {
		return "url"
	}
	entry, err := reg.Lookup(url)
	if err != nil {
		return "url"
	}
	return entry.Kind.String()
}
