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

// Package cache memoizes single-file reads for a short time.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/reading"
)

// Reader caches successful Read results. Errors and trees are never cached.
type Reader struct {
	next reading.Reader
	lru  *expirable.LRU[string, []byte]
}

var _ reading.Reader = (*Reader)(nil)

// 🔄 Wrap returns next unchanged when size is not positive.
func Wrap(next reading.Reader, size int, ttl time.Duration) reading.Reader {
	if size <= 0 {
		return next
	}
	return &Reader{
		next: next,
		lru:  expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (r *Reader) Read(ctx context.Context, url string, opts reading.ReadOptions) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	key := cacheKey(url, opts)

	if data, ok := r.lru.Get(key); ok {
		logger.Debug().Str("url", url).Msg("read cache hit")
		return bytes.Clone(data), nil
	}

	data, err := r.next.Read(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	r.lru.Add(key, bytes.Clone(data))
	return data, nil
}

func (r *Reader) ReadTree(ctx context.Context, repoURL string, ref string, filters []string) (*reading.TreeResult, error) {
	return r.next.ReadTree(ctx, repoURL, ref, filters)
}

// Len is the number of live entries.
func (r *Reader) Len() int {
	return r.lru.Len()
}

func (r *Reader) String() string {
	return fmt.Sprintf("cached{%v}", r.next)
}

// credentials are hashed so tokens never sit in memory as map keys
func cacheKey(url string, opts reading.ReadOptions) string {
	sum := sha256.Sum256([]byte(opts.Token + "\x00" + opts.AppToken))
	return url + "#" + hex.EncodeToString(sum[:8])
}
