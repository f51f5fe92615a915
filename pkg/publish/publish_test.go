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

package publish

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/entity"
	"github.com/walteh/docfetch/pkg/reading"
	"github.com/walteh/docfetch/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

type putCall struct {
	Content     string
	ContentType string
}

type memoryStore struct {
	mu   sync.Mutex
	puts map[string]putCall
	err  error
}

func (m *memoryStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.puts == nil {
		m.puts = map[string]putCall{}
	}
	m.puts[key] = putCall{Content: string(content), ContentType: contentType}
	return nil
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755), "mkdir should succeed")
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644), "write should succeed")
	}
	return dir
}

func TestPublish(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html":       "<h1>svc</h1>",
		"assets/app.json":  "{}",
		"guide/setup.html": "setup",
	})
	store := &memoryStore{}
	e := &entity.Entity{Kind: "Component", Metadata: entity.Metadata{Name: "svc"}}

	keys, err := New(store).Publish(testutils.Context(t), e, dir)
	require.NoError(t, err, "publish should succeed")

	assert.Equal(t, []string{
		"default/Component/svc/assets/app.json",
		"default/Component/svc/guide/setup.html",
		"default/Component/svc/index.html",
	}, keys, "keys should be sorted and prefixed")

	got := store.puts["default/Component/svc/index.html"]
	assert.Equal(t, "<h1>svc</h1>", got.Content, "content should be uploaded")
	assert.Contains(t, got.ContentType, "text/html", "content type should be guessed")
}

func TestPublishNamespace(t *testing.T) {
	e := &entity.Entity{Kind: "API", Metadata: entity.Metadata{Name: "orders", Namespace: "shop"}}
	assert.Equal(t, "shop/API/orders", Prefix(e), "namespace should lead the prefix")
}

func TestPublishErrors(t *testing.T) {
	ctx := testutils.Context(t)
	e := &entity.Entity{Kind: "Component", Metadata: entity.Metadata{Name: "svc"}}

	t.Run("missing_dir", func(t *testing.T) {
		_, err := New(&memoryStore{}).Publish(ctx, e, filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, reading.ErrNotFound, "missing dir is not found")
	})

	t.Run("unnamed_entity", func(t *testing.T) {
		_, err := New(&memoryStore{}).Publish(ctx, &entity.Entity{Kind: "Component"}, t.TempDir())
		assert.ErrorIs(t, err, reading.ErrInput, "unnamed entity is an input error")
	})

	t.Run("store_failure", func(t *testing.T) {
		boom := errors.New("bucket gone")
		dir := writeTree(t, map[string]string{"a.txt": "a"})
		_, err := New(&memoryStore{err: boom}).Publish(ctx, e, dir)
		assert.ErrorIs(t, err, boom, "store errors should propagate")
	})
}

func TestContentType(t *testing.T) {
	assert.Contains(t, ContentType("a/index.html"), "text/html", "html is known")
	assert.Equal(t, "application/octet-stream", ContentType("a/blob.zzzunknown"), "unknown falls back")
}

func TestNewMinioStoreValidates(t *testing.T) {
	_, err := NewMinioStore(config.PublishConfig{Bucket: "b"})
	assert.ErrorIs(t, err, config.ErrInvalid, "endpoint is required")

	_, err = NewMinioStore(config.PublishConfig{Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, config.ErrInvalid, "bucket is required")

	s, err := NewMinioStore(config.PublishConfig{Endpoint: "localhost:9000", Bucket: "docs"})
	require.NoError(t, err, "valid config should build")
	assert.Equal(t, "s3{bucket=docs}", s.String(), "string should name the bucket")
}

// s3Fake answers just enough of the S3 protocol for bucket checks and single part uploads.
// The first failHeads bucket checks are denied.
type s3Fake struct {
	mu        sync.Mutex
	requests  []string
	objects   map[string]string
	failHeads int
}

func (f *s3Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		if f.failHeads > 0 {
			f.failHeads--
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		if strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
			decoded, err := decodeAWSChunked(body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			body = decoded
		}
		if f.objects == nil {
			f.objects = map[string]string{}
		}
		f.objects[strings.TrimPrefix(r.URL.Path, "/")] = string(body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *s3Fake) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, method+" ") {
			n++
		}
	}
	return n
}

// decodeAWSChunked strips the aws-chunked framing minio uses for signed uploads over plain http:
// "<hex size>[;ext]\r\n<data>\r\n" repeated until a zero sized chunk, then optional trailers.
func decodeAWSChunked(body []byte) ([]byte, error) {
	var out []byte
	rest := body
	for {
		line, after, ok := bytes.Cut(rest, []byte("\r\n"))
		if !ok {
			return nil, errors.New("chunk header without line break")
		}
		sizeHex, _, _ := strings.Cut(string(line), ";")
		size, err := strconv.ParseInt(strings.TrimSpace(sizeHex), 16, 64)
		if err != nil {
			return nil, errors.Errorf("parsing chunk size %q: %w", sizeHex, err)
		}
		if size == 0 {
			return out, nil
		}
		if int64(len(after)) < size {
			return nil, errors.New("chunk shorter than its header")
		}
		out = append(out, after[:size]...)
		rest = bytes.TrimPrefix(after[size:], []byte("\r\n"))
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	framed := "2;chunk-signature=abc\r\nhi\r\n0;chunk-signature=def\r\n\r\n"
	out, err := decodeAWSChunked([]byte(framed))
	require.NoError(t, err, "framed body should decode")
	assert.Equal(t, "hi", string(out), "payload should be unwrapped")

	_, err = decodeAWSChunked([]byte("zz\r\n"))
	assert.Error(t, err, "bad chunk size should fail")
}

func TestMinioStorePut(t *testing.T) {
	fake := &s3Fake{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewMinioStore(config.PublishConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "docs",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err, "store should build")

	ctx := testutils.Context(t)
	require.NoError(t, s.Put(ctx, "default/Component/svc/index.html", []byte("hi"), "text/html"), "first put should succeed")
	require.NoError(t, s.Put(ctx, "default/Component/svc/b.html", []byte("b"), "text/html"), "second put should succeed")

	assert.Equal(t, 1, fake.count(http.MethodHead), "bucket should be checked once")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "hi", fake.objects["docs/default/Component/svc/index.html"], "object should be stored in the bucket")
	assert.Equal(t, "b", fake.objects["docs/default/Component/svc/b.html"], "second object should be stored in the bucket")
}

func TestMinioStoreRetriesBucketCheck(t *testing.T) {
	fake := &s3Fake{failHeads: 1}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewMinioStore(config.PublishConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "docs",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err, "store should build")

	ctx := testutils.Context(t)
	err = s.Put(ctx, "index.html", []byte("hi"), "text/html")
	require.Error(t, err, "denied bucket check should fail the put")
	assert.Contains(t, err.Error(), "checking bucket docs", "error should name the bucket check")
	assert.Equal(t, 0, fake.count(http.MethodPut), "nothing is uploaded after a failed check")

	require.NoError(t, s.Put(ctx, "index.html", []byte("hi"), "text/html"), "next put should check the bucket again")
	require.NoError(t, s.Put(ctx, "other.html", []byte("o"), "text/html"), "third put should reuse the check")
	assert.Equal(t, 2, fake.count(http.MethodHead), "bucket is checked until one check succeeds")
	assert.Equal(t, 2, fake.count(http.MethodPut), "both later puts should upload")
}
