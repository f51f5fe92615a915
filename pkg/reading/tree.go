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

package reading

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// parallel file writes in Dir
	dirWriteLimit = 8

	fileMode = 0o644
	dirMode  = 0o755
)

// 📄 File is one matched tree entry. Path is relative to the repository root.
type File struct {
	Path string

	load func() ([]byte, error)
}

// NewFile wraps a lazy loader.
func NewFile(path string, load func() ([]byte, error)) *File {
	return &File{Path: path, load: load}
}

// BytesFile is a File whose content is already in memory.
func BytesFile(path string, data []byte) *File {
	return NewFile(path, func() ([]byte, error) { return data, nil })
}

// Content realizes the file. Buffered files return the same slice every time; callers must not mutate it.
func (f *File) Content() ([]byte, error) {
	if f.load == nil {
		return nil, errors.Errorf("file %s has no content", f.Path)
	}
	return f.load()
}

// 🌳 TreeResult is the set of files produced by one ReadTree call. It can be materialized any number of times.
type TreeResult struct {
	files []*File
}

// NewTreeResult sorts files by path.
func NewTreeResult(files []*File) *TreeResult {
	sorted := make([]*File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return &TreeResult{files: sorted}
}

// Files returns the matched files in path order.
func (t *TreeResult) Files() []*File {
	return t.files
}

// 📂 Dir writes every file under outDir, or under a fresh temp directory when outDir is empty,
// and returns the root it wrote to.
func (t *TreeResult) Dir(ctx context.Context, outDir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if outDir == "" {
		dir, err := os.MkdirTemp("", "docfetch-")
		if err != nil {
			return "", errors.Errorf("creating temp directory: %w", err)
		}
		outDir = dir
	} else if err := os.MkdirAll(outDir, dirMode); err != nil {
		return "", errors.Errorf("creating output directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dirWriteLimit)

	for _, f := range t.files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !filepath.IsLocal(filepath.FromSlash(f.Path)) {
				return errors.Errorf("refusing to write %q outside %s", f.Path, outDir)
			}

			data, err := f.Content()
			if err != nil {
				return errors.Errorf("loading %s: %w", f.Path, err)
			}

			dst := filepath.Join(outDir, filepath.FromSlash(f.Path))
			if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
				return errors.Errorf("creating directory for %s: %w", f.Path, err)
			}
			if err := os.WriteFile(dst, data, fileMode); err != nil {
				return errors.Errorf("writing %s: %w", f.Path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	logger.Info().Str("dir", outDir).Int("files", len(t.files)).Msg("tree materialized")

	return outDir, nil
}

// 📦 Archive packs every file into a gzip-compressed tarball, entries in path order.
func (t *TreeResult) Archive(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, f := range t.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := f.Content()
		if err != nil {
			return nil, errors.Errorf("loading %s: %w", f.Path, err)
		}

		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     f.Path,
			Mode:     fileMode,
			Size:     int64(len(data)),
			ModTime:  time.Unix(0, 0).UTC(),
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, errors.Errorf("writing header for %s: %w", f.Path, err)
		}
		if _, err := tw.Write(data); err != nil {
			return nil, errors.Errorf("writing %s: %w", f.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, errors.Errorf("closing tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Errorf("closing gzip: %w", err)
	}

	return buf.Bytes(), nil
}
