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

// Package integrations turns configuration into a reader registry.
package integrations

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/reading"
	"github.com/walteh/docfetch/pkg/reading/cache"
	"github.com/walteh/docfetch/pkg/reading/github"
	"github.com/walteh/docfetch/pkg/reading/localfile"
	"github.com/walteh/docfetch/pkg/reading/urlreader"
	"gitlab.com/tozd/go/errors"
)

// HTTPClient builds the shared client with the configured timeout.
func HTTPClient(cfg *config.Config) *http.Client {
	return reading.NewHTTPClient(cfg.HTTP.TimeoutDuration())
}

// 🏭 Build registers, in order: one GitHub reader per integrations.github entry,
// one URL reader per integrations.url host glob, then the local file reader.
// cfg must already be validated.
func Build(ctx context.Context, cfg *config.Config, client *http.Client) (*reading.Registry, error) {
	logger := zerolog.Ctx(ctx)

	if client == nil {
		client = HTTPClient(cfg)
	}

	wrap := func(r reading.Reader) reading.Reader {
		return cache.Wrap(r, cfg.Cache.Size, cfg.Cache.TTLDuration())
	}

	reg := reading.NewRegistry()

	for _, gh := range cfg.Integrations.GitHub {
		r, err := github.New(gh, client)
		if err != nil {
			return nil, errors.Errorf("creating github reader for %s: %w", gh.Host, err)
		}
		reg.Register(reading.Entry{
			Kind:      reading.KindGitHub,
			Reader:    wrap(r),
			Predicate: reading.HostPredicate(gh.Host),
		})
		logger.Debug().Str("reader", r.String()).Msg("registered reader")
	}

	if len(cfg.Integrations.URL) > 0 {
		plain := wrap(urlreader.New(client))
		for _, u := range cfg.Integrations.URL {
			reg.Register(reading.Entry{
				Kind:      reading.KindURL,
				Reader:    plain,
				Predicate: reading.HostGlobPredicate(u.Host),
			})
			logger.Debug().Str("host", u.Host).Msg("registered url reader")
		}
	}

	reg.Register(reading.Entry{
		Kind:      reading.KindFile,
		Reader:    localfile.New(),
		Predicate: reading.FilePredicate(),
	})

	return reg, nil
}
