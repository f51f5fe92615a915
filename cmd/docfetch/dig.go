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
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/cmd/docfetch/opts"
	"github.com/walteh/docfetch/pkg/checkout"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/integrations"
	"github.com/walteh/docfetch/pkg/log"
	"github.com/walteh/docfetch/pkg/prepare"
	"github.com/walteh/docfetch/pkg/publish"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/dig"
)

// registerProviders wires every component, bottom-up: config, transport, readers, checkout, preparer, publisher.
func registerProviders(ctx context.Context, container *dig.Container, cfg *config.Config) error {
	providers := []any{
		func() *config.Config { return cfg },
		func(cfg *config.Config) *http.Client { return integrations.HTTPClient(cfg) },
		func(cfg *config.Config, client *http.Client) (*reading.Registry, error) {
			return integrations.Build(ctx, cfg, client)
		},
		func(reg *reading.Registry) reading.Reader { return reg },
		func(cfg *config.Config) (*checkout.Manager, error) {
			return checkout.New(cfg.Checkout, checkout.GoGit{})
		},
		func(reader reading.Reader, co *checkout.Manager) *prepare.Directory {
			return prepare.New(reader, co, "")
		},
		func(cfg *config.Config) (*publish.Publisher, error) {
			if cfg.Publish == nil {
				return nil, nil
			}
			store, err := publish.NewMinioStore(*cfg.Publish)
			if err != nil {
				return nil, err
			}
			return publish.New(store), nil
		},
		func() *log.Logger {
			level := zerolog.GlobalLevel()
			if level < zerolog.WarnLevel {
				level = zerolog.WarnLevel
			}
			return log.New(os.Stderr, level)
		},
		newRootOpts,
	}

	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return errors.Errorf("registering provider: %w", err)
		}
	}
	return nil
}

func newRootOpts(
	cfg *config.Config,
	reader reading.Reader,
	co *checkout.Manager,
	prep *prepare.Directory,
	pub *publish.Publisher,
	console *log.Logger,
) *opts.RootOpts {
	return &opts.RootOpts{
		Config:    cfg,
		Reader:    reader,
		Checkout:  co,
		Preparer:  prep,
		Publisher: pub,
		Console:   console,
	}
}

// 💉 injectRootOpts builds a fresh container for cfg and resolves the command options.
func injectRootOpts(ctx context.Context, cfg *config.Config) (*opts.RootOpts, error) {
	container := dig.New()

	if err := registerProviders(ctx, container, cfg); err != nil {
		return nil, err
	}

	var out *opts.RootOpts
	if err := container.Invoke(func(o *opts.RootOpts) {
		out = o
	}); err != nil {
		return nil, errors.Errorf("resolving dependencies: %w", err)
	}

	return out, nil
}
