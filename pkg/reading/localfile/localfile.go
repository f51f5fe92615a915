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

// Package localfile serves file:// URLs and absolute paths from the local disk.
package localfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
)

type Reader struct{}

var _ reading.Reader = (*Reader)(nil)

func New() *Reader {
	return &Reader{}
}

// 📥 Read returns the file contents. A missing file is reading.ErrNotFound.
func (r *Reader) Read(ctx context.Context, url string, opts reading.ReadOptions) ([]byte, error) {
	p, err := localPath(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Errorf("%w: %s", reading.ErrNotFound, p)
	}
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// 🌳 ReadTree walks the directory at repoURL. Contents are loaded when first asked for.
func (r *Reader) ReadTree(ctx context.Context, repoURL string, ref string, filters []string) (*reading.TreeResult, error) {
	logger := zerolog.Ctx(ctx)

	root, err := localPath(repoURL)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Errorf("%w: %s", reading.ErrNotFound, root)
	}
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s is not a directory", reading.ErrInput, root)
	}

	var files []*reading.File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !reading.Match(filters, rel) {
			return nil
		}
		files = append(files, reading.NewFile(rel, func() ([]byte, error) {
			return os.ReadFile(p)
		}))
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	logger.Debug().Str("root", root).Int("files", len(files)).Msg("local tree read")

	return reading.NewTreeResult(files), nil
}

func (r *Reader) String() string {
	return "file{}"
}

func localPath(raw string) (string, error) {
	u, err := reading.ParseLocation(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", errors.Errorf("%w: %s is not a file location", reading.ErrInput, raw)
	}
	return filepath.FromSlash(u.Path), nil
}
