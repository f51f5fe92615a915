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
	"github.com/walteh/docfetch/pkg/entity"
	"github.com/walteh/docfetch/pkg/location"
	"github.com/walteh/docfetch/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func loadEntity(path, name string) (*entity.Entity, error) {
	entities, err := entity.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return entity.Select(entities, name)
}

// NewLocateCmd creates the locate command
func NewLocateCmd(opts *opts.RootOpts) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "locate <catalog-info.yaml>",
		Short: "Print where an entity's docs live",
		Long: `Locate reads backstage.io/techdocs-ref. A relative dir reference resolves to the
entity's backstage.io/managed-by-location instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEntity(args[0], name)
			if err != nil {
				return err
			}
			ref, err := location.ForEntity(e)
			if err != nil {
				return errors.Errorf("locating docs for %s: %w", e.Ref(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "entity", "e", "", "entity name when the file holds several")

	return cmd
}

// NewPrepareCmd creates the prepare command
func NewPrepareCmd(opts *opts.RootOpts) *cobra.Command {
	var name, token string

	cmd := &cobra.Command{
		Use:   "prepare <catalog-info.yaml>",
		Short: "Resolve an entity's docs to a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEntity(args[0], name)
			if err != nil {
				return err
			}
			dir, err := opts.Preparer.Prepare(cmd.Context(), e, token)
			if err != nil {
				return errors.Errorf("preparing %s: %w", e.Ref(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "entity", "e", "", "entity name when the file holds several")
	cmd.Flags().StringVar(&token, "token", "", "git token used for checkouts")

	return cmd
}

// NewPublishCmd creates the publish command
func NewPublishCmd(opts *opts.RootOpts) *cobra.Command {
	var name, token string

	cmd := &cobra.Command{
		Use:   "publish <catalog-info.yaml> [dir]",
		Short: "Upload an entity's docs directory to object storage",
		Long: `Publish uploads every file of dir to <namespace>/<kind>/<name>/ in the configured bucket.
When dir is omitted the entity is prepared first.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if opts.Publisher == nil {
				return errors.New("no publish block in the configuration")
			}

			e, err := loadEntity(args[0], name)
			if err != nil {
				return err
			}

			var dir string
			if len(args) == 2 {
				dir = args[1]
			} else if dir, err = opts.Preparer.Prepare(ctx, e, token); err != nil {
				return errors.Errorf("preparing %s: %w", e.Ref(), err)
			}

			keys, err := opts.Publisher.Publish(ctx, e, dir)
			if err != nil {
				return errors.Errorf("publishing %s: %w", e.Ref(), err)
			}
			for _, k := range keys {
				opts.Console.LogFile(ctx, log.FileEntry{Path: k, Source: "s3", Status: "uploaded", IsWritten: true})
			}
			opts.Console.Successf("published %d files for %s", len(keys), e.Ref())
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "entity", "e", "", "entity name when the file holds several")
	cmd.Flags().StringVar(&token, "token", "", "git token used when preparing")

	return cmd
}
