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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for the relative path
	sourceWidth = 10 // Width for the reader kind
	statusWidth = 15 // Width for status text
)

// 🎯 FileEntry is one file of a materialized or published tree
type FileEntry struct {
	Path      string // Relative path inside the tree
	Source    string // Reader kind (github/url/file/checkout/s3)
	Status    string // Operation status
	Bytes     int    // Size of the content
	IsWritten bool   // Whether the file was written or uploaded
	IsFailed  bool   // Whether writing the file failed
}

// 📦 TreeOperation describes the tree being materialized
type TreeOperation struct {
	Location    string // Repository or archive URL
	Ref         string // Branch, tag or commit
	Destination string // Output directory or bucket prefix
}

// 🎯 Logger prints CLI progress to the console and mirrors it to zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *TreeOperation
	entries   []FileEntry
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) formatFileEntry(e FileEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case e.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case e.IsWritten:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var sourceColor color.Attribute
	switch e.Source {
	case "github", "checkout":
		sourceColor = color.FgCyan
	case "file":
		sourceColor = color.FgYellow
	default:
		sourceColor = color.FgBlue
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, e.Path),
		color.New(sourceColor).Sprint(fmt.Sprintf("%-*s", sourceWidth, e.Source)),
		fmt.Sprintf("%-*s", statusWidth, e.Status))
}

// 📝 LogFile prints one file line
func (l *Logger) LogFile(ctx context.Context, e FileEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)

	fmt.Fprintln(l.console, l.formatFileEntry(e))

	l.zlog.Info().
		Str("file", e.Path).
		Str("source", e.Source).
		Str("status", e.Status).
		Int("bytes", e.Bytes).
		Bool("is_written", e.IsWritten).
		Bool("is_failed", e.IsFailed).
		Msg("file")
}

// 📝 StartTree prints the tree header and resets the file list
func (l *Logger) StartTree(ctx context.Context, op TreeOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.entries = nil

	fmt.Fprintf(l.console, "[materializing %s]\n",
		color.New(color.FgCyan).Sprint(op.Destination))

	ref := op.Ref
	if ref == "" {
		ref = "default"
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Location),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(ref))

	l.zlog.Info().
		Str("location", op.Location).
		Str("ref", op.Ref).
		Str("destination", op.Destination).
		Msg("starting tree")
}

// 📝 EndTree logs a summary of the current tree
func (l *Logger) EndTree(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	written := 0
	for _, e := range l.entries {
		if e.IsWritten {
			written++
		}
	}

	l.zlog.Info().
		Str("location", l.currentOp.Location).
		Int("files", len(l.entries)).
		Int("written", written).
		Msg("tree complete")

	l.currentOp = nil
	l.entries = nil
}

// LogNewline prints an empty line
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("docfetch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
