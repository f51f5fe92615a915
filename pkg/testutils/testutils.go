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

// Package testutils holds helpers shared by package tests.
package testutils

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a logger that writes through t.
func Context(t testing.TB) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// ArchiveEntry is one member of a test tarball. An empty Body with Dir set writes a directory.
type ArchiveEntry struct {
	Name string
	Body string
	Dir  bool
}

// 📦 TarGz builds a gzip-compressed tarball in the layout GitHub serves:
// a pax global header followed by the given entries.
func TarGz(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Typeflag:   tar.TypeXGlobalHeader,
		Name:       "pax_global_header",
		PAXRecords: map[string]string{"comment": "0123456789abcdef"},
		Format:     tar.FormatPAX,
	}), "writing global header")

	for _, e := range entries {
		if e.Dir {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeDir,
				Name:     e.Name,
				Mode:     0o755,
			}), "writing dir header %s", e.Name)
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Name,
			Mode:     0o644,
			Size:     int64(len(e.Body)),
		}), "writing header %s", e.Name)
		_, err := tw.Write([]byte(e.Body))
		require.NoError(t, err, "writing body %s", e.Name)
	}

	require.NoError(t, tw.Close(), "closing tar writer")
	require.NoError(t, gz.Close(), "closing gzip writer")

	return buf.Bytes()
}

// RepoArchive is TarGz with every file placed under "<root>/", plus the directory entries.
func RepoArchive(t testing.TB, root string, files map[string]string) []byte {
	t.Helper()

	entries := []ArchiveEntry{{Name: root + "/", Dir: true}}
	seen := map[string]bool{}
	for name, body := range files {
		for dir := parentDir(name); dir != ""; dir = parentDir(dir) {
			if !seen[dir] {
				seen[dir] = true
				entries = append(entries, ArchiveEntry{Name: root + "/" + dir + "/", Dir: true})
			}
		}
		entries = append(entries, ArchiveEntry{Name: root + "/" + name, Body: body})
	}
	return TarGz(t, entries...)
}

func parentDir(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return ""
}
