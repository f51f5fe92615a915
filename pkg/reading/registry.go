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
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Predicate decides whether an entry serves a URL.
type Predicate func(u *url.URL) bool

// Entry pairs a reader with the URLs it serves.
type Entry struct {
	Kind      Kind
	Reader    Reader
	Predicate Predicate
}

// 🗺️ Registry picks the first entry, in registration order, whose predicate matches.
// It implements Reader itself.
type Registry struct {
	entries []Entry
}

var _ Reader = (*Registry)(nil)

// NewRegistry keeps entries in the given order.
func NewRegistry(entries ...Entry) *Registry {
	return &Registry{entries: entries}
}

// 📝 Register appends an entry
func (r *Registry) Register(e Entry) {
	r.entries = append(r.entries, e)
}

// Entries returns the registered entries in lookup order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// 🎯 Lookup returns the entry that serves rawURL. Absolute filesystem paths are treated as file URLs.
func (r *Registry) Lookup(rawURL string) (Entry, error) {
	u, err := ParseLocation(rawURL)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range r.entries {
		if e.Predicate(u) {
			return e, nil
		}
	}
	return Entry{}, errors.Errorf("%w: %s", ErrNoReader, rawURL)
}

func (r *Registry) Read(ctx context.Context, rawURL string, opts ReadOptions) ([]byte, error) {
	e, err := r.Lookup(rawURL)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("url", rawURL).Str("reader", describe(e)).Msg("selected reader")
	return e.Reader.Read(ctx, rawURL, opts)
}

func (r *Registry) ReadTree(ctx context.Context, repoURL string, ref string, filters []string) (*TreeResult, error) {
	e, err := r.Lookup(repoURL)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("url", repoURL).Str("reader", describe(e)).Msg("selected reader")
	return e.Reader.ReadTree(ctx, repoURL, ref, filters)
}

func (r *Registry) String() string {
	parts := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		parts = append(parts, describe(e))
	}
	return "registry[" + strings.Join(parts, ",") + "]"
}

func describe(e Entry) string {
	if s, ok := e.Reader.(fmt.Stringer); ok {
		return s.String()
	}
	return e.Kind.String()
}

// ParseLocation parses a URL or an absolute path.
func ParseLocation(rawURL string) (*url.URL, error) {
	if filepath.IsAbs(rawURL) {
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(rawURL)}, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, inputErrorf("invalid url %q: %s", rawURL, err.Error())
	}
	if u.Scheme == "" {
		return nil, inputErrorf("url %q has no scheme", rawURL)
	}
	return u, nil
}

// HostPredicate matches one exact host (including port).
func HostPredicate(host string) Predicate {
	return func(u *url.URL) bool {
		return u.Host == host
	}
}

// HostGlobPredicate matches http(s) URLs whose host matches glob, e.g. "*.example.com".
func HostGlobPredicate(glob string) Predicate {
	return func(u *url.URL) bool {
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		ok, err := doublestar.Match(glob, u.Host)
		return err == nil && ok
	}
}

// FilePredicate matches file:// URLs and absolute paths.
func FilePredicate() Predicate {
	return func(u *url.URL) bool {
		return u.Scheme == "file"
	}
}
