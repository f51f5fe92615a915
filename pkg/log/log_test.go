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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFile(context.Background(), FileEntry{
					Path:      "docs/index.md",
					Source:    "github",
					Status:    "written",
					Bytes:     12,
					IsWritten: true,
				})
			},
			wantLogs: []string{
				"✓ docs/index.md                       github     written",
			},
		},
		{
			name: "start_tree",
			op: func(t *testing.T, logger *Logger) {
				logger.StartTree(context.Background(), TreeOperation{
					Location:    "https://github.com/a/b",
					Ref:         "main",
					Destination: "/tmp/out",
				})
			},
			wantLogs: []string{
				"[materializing /tmp/out]",
				"◆ https://github.com/a/b • main",
			},
		},
		{
			name: "start_tree_default_ref",
			op: func(t *testing.T, logger *Logger) {
				logger.StartTree(context.Background(), TreeOperation{Location: "/srv/docs", Destination: "/tmp/out"})
				logger.EndTree(context.Background())
				logger.EndTree(context.Background())
			},
			wantLogs: []string{
				"[materializing /tmp/out]",
				"◆ /srv/docs • default",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %d", 3)
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success 3",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("reading tree")
			},
			wantLogs: []string{
				"docfetch • reading tree",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Disabled)

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestFileEntryFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		e    FileEntry
		want string
	}{
		{
			name: "written",
			e:    FileEntry{Path: "index.md", Source: "url", Status: "written", IsWritten: true},
			want: "    ✓ index.md                            url        written        ",
		},
		{
			name: "failed",
			e:    FileEntry{Path: "index.md", Source: "s3", Status: "failed", IsFailed: true},
			want: "    ✗ index.md                            s3         failed         ",
		},
		{
			name: "listed",
			e:    FileEntry{Path: "index.md", Source: "checkout", Status: "present"},
			want: "    • index.md                            checkout   present        ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(io.Discard, zerolog.Disabled)
			assert.Equal(t, tt.want, logger.formatFileEntry(tt.e), "formatted output should match")
		})
	}
}
