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
	"compress/gzip"
	"context"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ArchiveEntry is one regular file in an archive. Body is only readable until the iteration advances.
type ArchiveEntry struct {
	Name string
	Size int64
	Body io.Reader
}

// 🔄 Entries walks a tar stream once. Directories, links and pax global headers are skipped.
// The sequence consumes r, so it cannot be ranged over twice.
func Entries(r io.Reader) iter.Seq2[*ArchiveEntry, error] {
	return func(yield func(*ArchiveEntry, error) bool) {
		tr := tar.NewReader(r)
		for {
			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, errors.Errorf("reading tar entry: %w", err))
				return
			}
			if hdr.Typeflag != tar.TypeReg {
				continue
			}
			if !yield(&ArchiveEntry{Name: hdr.Name, Size: hdr.Size, Body: tr}, nil) {
				return
			}
		}
	}
}

// 📦 ExtractTree gunzips r and buffers only the entries that survive StripRoot and Match.
func ExtractTree(ctx context.Context, r io.Reader, root string, filters []string) (*TreeResult, error) {
	logger := zerolog.Ctx(ctx)

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Errorf("%w: archive is not gzip compressed: %s", ErrFetch, err.Error())
	}
	defer gz.Close()

	var files []*File
	for entry, err := range Entries(gz) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel, ok := StripRoot(entry.Name, root)
		if !ok {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return nil, errors.Errorf("%w: archive entry %q escapes the tree root", ErrInput, entry.Name)
		}
		if !Match(filters, rel) {
			continue
		}

		data, err := io.ReadAll(entry.Body)
		if err != nil {
			return nil, errors.Errorf("reading archive entry %s: %w", entry.Name, err)
		}

		logger.Debug().Str("path", rel).Int("bytes", len(data)).Msg("matched archive entry")
		files = append(files, BytesFile(rel, data))
	}

	return NewTreeResult(files), nil
}

// StripRoot removes the archive's top-level folder. GitHub names it "<repo>-<ref>", but refs
// with slashes or commit archives use another form, so the first path component is dropped
// when root does not match.
func StripRoot(name, root string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	if root != "" {
		if rest, ok := strings.CutPrefix(name, root+"/"); ok {
			return rest, rest != ""
		}
	}
	_, rest, ok := strings.Cut(name, "/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
