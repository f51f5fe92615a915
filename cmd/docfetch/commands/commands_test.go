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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docfetch/cmd/docfetch/opts"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/integrations"
	"github.com/walteh/docfetch/pkg/log"
	"github.com/walteh/docfetch/pkg/reading"
	"github.com/walteh/docfetch/pkg/testutils"
)

func newTestOpts(t *testing.T) *opts.RootOpts {
	t.Helper()
	ctx := testutils.Context(t)

	cfg, err := config.Default(ctx)
	require.NoError(t, err, "default config should validate")

	reg, err := integrations.Build(ctx, cfg, nil)
	require.NoError(t, err, "registry should build")

	return &opts.RootOpts{
		Config:  cfg,
		Reader:  reg,
		Console: log.New(io.Discard, zerolog.Disabled),
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(testutils.Context(t))
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "mkdir should succeed")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "write should succeed")
}

func TestReadCmdLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.md")
	writeFile(t, path, "# hello")

	out, err := run(t, NewReadCmd(newTestOpts(t)), path)
	require.NoError(t, err, "read should succeed")
	assert.Equal(t, "# hello", out, "content should be printed")
}

func TestReadCmdMissingFile(t *testing.T) {
	_, err := run(t, NewReadCmd(newTestOpts(t)), filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err, "missing file should fail")
	assert.ErrorIs(t, err, reading.ErrNotFound, "missing file is not found")
}

func TestTreeCmd(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "docs", "index.md"), "# docs")
	writeFile(t, filepath.Join(src, "README.md"), "readme")

	t.Run("list", func(t *testing.T) {
		out, err := run(t, NewTreeCmd(newTestOpts(t)), "file://"+filepath.ToSlash(src), "--filter", "docs", "--list")
		require.NoError(t, err, "list should succeed")
		assert.Contains(t, out, "docs/index.md", "matched file should be listed")
		assert.NotContains(t, out, "README.md", "filtered file should not be listed")
	})

	t.Run("dir", func(t *testing.T) {
		dst := t.TempDir()
		out, err := run(t, NewTreeCmd(newTestOpts(t)), "file://"+filepath.ToSlash(src), "--out", dst)
		require.NoError(t, err, "tree should succeed")
		assert.Equal(t, dst+"\n", out, "output dir should be printed")
		assert.FileExists(t, filepath.Join(dst, "docs", "index.md"), "file should be written")
		assert.FileExists(t, filepath.Join(dst, "README.md"), "file should be written")
	})

	t.Run("dir_write_failure", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "not-a-dir")
		writeFile(t, blocker, "x")

		console := &bytes.Buffer{}
		o := newTestOpts(t)
		o.Console = log.New(console, zerolog.Disabled)

		_, err := run(t, NewTreeCmd(o), "file://"+filepath.ToSlash(src), "--out", blocker)
		require.Error(t, err, "writing into a regular file should fail")
		assert.Contains(t, err.Error(), "writing tree", "error should name the step")
		assert.Contains(t, console.String(), "docs/index.md", "each file should be reported")
		assert.Contains(t, console.String(), "failed", "files should be reported as failed")
		assert.NotContains(t, console.String(), "written", "nothing should be reported as written")
	})

	t.Run("archive", func(t *testing.T) {
		archive := filepath.Join(t.TempDir(), "docs.tar.gz")
		_, err := run(t, NewTreeCmd(newTestOpts(t)), "file://"+filepath.ToSlash(src), "--archive", archive)
		require.NoError(t, err, "archive should succeed")
		assert.FileExists(t, archive, "archive should be written")
	})
}

func TestLocateCmd(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog-info.yaml")
	writeFile(t, catalog, `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: svc
  annotations:
    backstage.io/techdocs-ref: dir:.
    backstage.io/managed-by-location: url:https://github.com/a/b/blob/main/catalog-info.yaml
`)

	out, err := run(t, NewLocateCmd(newTestOpts(t)), catalog)
	require.NoError(t, err, "locate should succeed")
	assert.Equal(t, "url:https://github.com/a/b/blob/main/catalog-info.yaml\n", out, "managed-by-location should be printed")
}

func TestPublishCmdWithoutConfig(t *testing.T) {
	_, err := run(t, NewPublishCmd(newTestOpts(t)), "catalog-info.yaml", t.TempDir())
	require.Error(t, err, "publish without a bucket should fail")
	assert.Contains(t, err.Error(), "no publish block", "error should explain")
}
