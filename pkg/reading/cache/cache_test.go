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

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docfetch/pkg/reading"
	"github.com/walteh/docfetch/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

type countingReader struct {
	reads int
	trees int
	fail  error
}

func (c *countingReader) Read(ctx context.Context, url string, opts reading.ReadOptions) ([]byte, error) {
	c.reads++
	if c.fail != nil {
		return nil, c.fail
	}
	return []byte(url + "|" + opts.Token), nil
}

func (c *countingReader) ReadTree(ctx context.Context, repoURL, ref string, filters []string) (*reading.TreeResult, error) {
	c.trees++
	return reading.NewTreeResult(nil), nil
}

func (c *countingReader) String() string { return "counting" }

func TestWrapDisabled(t *testing.T) {
	next := &countingReader{}
	assert.Same(t, next, Wrap(next, 0, time.Minute), "size 0 should disable caching")
}

func TestReadIsCached(t *testing.T) {
	ctx := testutils.Context(t)
	next := &countingReader{}
	r := Wrap(next, 8, time.Minute).(*Reader)

	first, err := r.Read(ctx, "https://x/a", reading.ReadOptions{})
	require.NoError(t, err, "first read should succeed")
	first[0] = 'X'

	second, err := r.Read(ctx, "https://x/a", reading.ReadOptions{})
	require.NoError(t, err, "second read should succeed")
	assert.Equal(t, "https://x/a|", string(second), "cached bytes should not be mutated by callers")
	assert.Equal(t, 1, next.reads, "second read should hit the cache")

	_, err = r.Read(ctx, "https://x/a", reading.ReadOptions{Token: "t"})
	require.NoError(t, err, "authed read should succeed")
	assert.Equal(t, 2, next.reads, "different credentials use a different key")
	assert.Equal(t, 2, r.Len(), "two entries should be cached")

	_, err = r.ReadTree(ctx, "https://x/a", "main", nil)
	require.NoError(t, err, "tree should pass through")
	_, err = r.ReadTree(ctx, "https://x/a", "main", nil)
	require.NoError(t, err, "tree should pass through")
	assert.Equal(t, 2, next.trees, "trees are never cached")

	assert.Equal(t, "cached{counting}", r.String(), "description should wrap the inner reader")
}

func TestErrorsAreNotCached(t *testing.T) {
	ctx := testutils.Context(t)
	next := &countingReader{fail: errors.Errorf("%w: gone", reading.ErrNotFound)}
	r := Wrap(next, 8, time.Minute)

	_, err := r.Read(ctx, "https://x/a", reading.ReadOptions{})
	assert.ErrorIs(t, err, reading.ErrNotFound, "error should pass through")
	_, err = r.Read(ctx, "https://x/a", reading.ReadOptions{})
	assert.ErrorIs(t, err, reading.ErrNotFound, "error should pass through")
	assert.Equal(t, 2, next.reads, "errors should not be cached")
}

func TestEntriesExpire(t *testing.T) {
	ctx := testutils.Context(t)
	next := &countingReader{}
	r := Wrap(next, 8, 20*time.Millisecond)

	_, err := r.Read(ctx, "https://x/a", reading.ReadOptions{})
	require.NoError(t, err, "read should succeed")

	require.Eventually(t, func() bool {
		_, err := r.Read(ctx, "https://x/a", reading.ReadOptions{})
		return err == nil && next.reads == 2
	}, time.Second, 10*time.Millisecond, "entry should expire")
}
