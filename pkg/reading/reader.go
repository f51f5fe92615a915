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
)

// 🔌 Reader fetches a single file or a whole tree from one class of remote location
type Reader interface {
	// 📥 Read returns the bytes behind url
	Read(ctx context.Context, url string, opts ReadOptions) ([]byte, error)

	// 🌳 ReadTree fetches the repository archive at ref and keeps the entries matching filters.
	// Filters follow Match: an empty list keeps everything, and a plain prefix only matches
	// whole path segments, so "docs" keeps docs/a.md but not docs2/a.md.
	ReadTree(ctx context.Context, repoURL string, ref string, filters []string) (*TreeResult, error)
}

// ReadOptions carries per-call credentials. AppToken wins over Token when both are set.
type ReadOptions struct {
	Token    string
	AppToken string
}

// Kind tags the concrete reader behind a registry entry.
type Kind int

const (
	KindUnknown Kind = iota
	KindGitHub
	KindURL
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindGitHub:
		return "github"
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}
