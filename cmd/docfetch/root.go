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
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/docfetch/cmd/docfetch/commands"
	"github.com/walteh/docfetch/cmd/docfetch/opts"
	"github.com/walteh/docfetch/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// rootFlags are bound to the persistent flags of the root command
type rootFlags struct {
	configFile string
	debug      bool
}

// 🌳 newRootCmd builds the command tree. Dependencies are resolved once flags are parsed.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "docfetch",
		Short: "Resolve catalog locations and fetch their content",
		Long: `docfetch resolves Backstage-style location annotations and fetches what they point at.
It can:
1. Read a single file through the matching reader (GitHub API/raw, plain URL, local file)
2. Materialize a filtered repository tree to disk or a tarball
3. Keep a local clone per repository and branch
4. Prepare and publish an entity's docs directory`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			ctx := setupLogging(cmd.Context(), os.Stderr, flags.debug)
			cmd.SetContext(ctx)

			cfg, err := loadConfig(ctx, flags.configFile)
			if err != nil {
				return err
			}

			resolved, err := injectRootOpts(ctx, cfg)
			if err != nil {
				return err
			}
			*rootOpts = *resolved
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		commands.NewReadCmd(rootOpts),
		commands.NewTreeCmd(rootOpts),
		commands.NewCheckoutCmd(rootOpts),
		commands.NewLastCommitCmd(rootOpts),
		commands.NewLocateCmd(rootOpts),
		commands.NewPrepareCmd(rootOpts),
		commands.NewPublishCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig uses path when set, then an auto-detected file, then the built-in defaults.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("no config file found, using defaults")
			return config.Default(ctx)
		}
		path = found
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// setupLogging installs a console zerolog logger on ctx and as the default context logger.
func setupLogging(ctx context.Context, w io.Writer, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}

// loadDotEnv reads .env from the working directory when present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := FormatVersion(asJSON)
			if err != nil {
				return errors.Errorf("formatting version: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
