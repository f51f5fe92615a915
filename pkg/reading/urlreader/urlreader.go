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

// Package urlreader reads plain HTTP(S) locations on explicitly allowed hosts.
package urlreader

import (
	"context"
	"net/http"

	"github.com/walteh/docfetch/pkg/reading"
)

// Reader issues unauthenticated GETs.
type Reader struct {
	http *http.Client
}

var _ reading.Reader = (*Reader)(nil)

func New(httpClient *http.Client) *Reader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Reader{http: httpClient}
}

func (r *Reader) Read(ctx context.Context, url string, opts reading.ReadOptions) ([]byte, error) {
	return reading.GetBytes(ctx, r.http, url, url, bearer(opts))
}

// ReadTree treats repoURL as a gzip-compressed tarball with a single top-level folder.
// ref is ignored; the URL already names one revision.
func (r *Reader) ReadTree(ctx context.Context, repoURL string, ref string, filters []string) (*reading.TreeResult, error) {
	body, err := reading.Get(ctx, r.http, repoURL, repoURL, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return reading.ExtractTree(ctx, body, "", filters)
}

func (r *Reader) String() string {
	return "url{}"
}

func bearer(opts reading.ReadOptions) http.Header {
	switch {
	case opts.AppToken != "":
		return http.Header{"Authorization": []string{"Bearer " + opts.AppToken}}
	case opts.Token != "":
		return http.Header{"Authorization": []string{"Bearer " + opts.Token}}
	}
	return nil
}
