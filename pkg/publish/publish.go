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

// Package publish uploads a materialized docs directory to object storage.
package publish

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/entity"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const uploadLimit = 8

// Publisher uploads every file of a directory under the entity's prefix.
type Publisher struct {
	store ObjectStore
}

func New(store ObjectStore) *Publisher {
	return &Publisher{store: store}
}

// Prefix is "<namespace>/<kind>/<name>".
func Prefix(e *entity.Entity) string {
	return path.Join(e.Namespace(), e.Kind, e.Metadata.Name)
}

// ContentType guesses from the extension and falls back to application/octet-stream.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// 🚀 Publish walks dir and uploads each regular file to <prefix>/<rel>. Keys are returned sorted.
func (p *Publisher) Publish(ctx context.Context, e *entity.Entity, dir string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	if e == nil || e.Metadata.Name == "" || e.Kind == "" {
		return nil, errors.Errorf("%w: entity needs a kind and a name to be published", reading.ErrInput)
	}

	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", reading.ErrNotFound, dir)
		}
		return nil, errors.Errorf("walking %s: %w", dir, err)
	}

	prefix := Prefix(e)
	keys := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadLimit)
	for i, file := range files {
		g.Go(func() error {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return errors.Errorf("relativizing %s: %w", file, err)
			}
			key := path.Join(prefix, filepath.ToSlash(rel))

			data, err := os.ReadFile(file)
			if err != nil {
				return errors.Errorf("reading %s: %w", file, err)
			}
			if err := p.store.Put(gctx, key, data, ContentType(key)); err != nil {
				return err
			}
			keys[i] = key
			logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("uploaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(keys)
	logger.Info().Str("entity", e.Ref()).Str("prefix", prefix).Int("files", len(keys)).Msg("published")
	return keys, nil
}
