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

package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/giturl"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
)

const rawAccept = "application/vnd.github.v3.raw"

// Mode is the endpoint family used for a single read.
type Mode string

const (
	ModeAPI Mode = "api"
	ModeRaw Mode = "raw"
)

// 🎯 Reader reads files and trees from one GitHub-style host
type Reader struct {
	cfg    config.GitHubIntegration
	client *github.Client
	http   *http.Client
}

var _ reading.Reader = (*Reader)(nil)

// 🏭 New creates a reader for a normalized integration entry
func New(cfg config.GitHubIntegration, httpClient *http.Client) (*Reader, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := github.NewClient(httpClient)
	if cfg.APIBaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.APIBaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Errorf("parsing api base url for %s: %w", cfg.Host, err)
		}
		client.BaseURL = base
	}

	return &Reader{cfg: cfg, client: client, http: httpClient}, nil
}

// Host is the host this reader serves.
func (r *Reader) Host() string {
	return r.cfg.Host
}

// 🔍 Mode prefers the API whenever a token is supplied or no raw endpoint exists.
func (r *Reader) Mode(token string) Mode {
	if r.cfg.APIBaseURL != "" && (token != "" || r.cfg.RawBaseURL == "") {
		return ModeAPI
	}
	return ModeRaw
}

// 📥 Read fetches one file
func (r *Reader) Read(ctx context.Context, rawURL string, opts reading.ReadOptions) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	mode := r.Mode(opts.Token)
	var target string
	var err error
	if mode == ModeAPI {
		target, err = r.APIURL(rawURL)
	} else {
		target, err = r.RawURL(rawURL)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("url", rawURL).Str("target", target).Str("mode", string(mode)).Msg("reading from github")

	if mode == ModeAPI {
		return r.readAPI(ctx, rawURL, target, opts)
	}
	return reading.GetBytes(ctx, r.http, rawURL, target, r.authHeader(opts))
}

func (r *Reader) readAPI(ctx context.Context, rawURL, target string, opts reading.ReadOptions) ([]byte, error) {
	req, err := r.client.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Errorf("%w: building request for %s: %s", reading.ErrInput, target, err.Error())
	}
	req.Header.Set("Accept", rawAccept)
	for k, vs := range r.authHeader(opts) {
		req.Header[k] = vs
	}

	resp, err := r.client.BareDo(ctx, req)
	if err != nil {
		if resp != nil && resp.Response != nil {
			return nil, errors.WithStack(&reading.HTTPError{
				URL:        rawURL,
				Target:     target,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
			})
		}
		return nil, errors.WithStack(&reading.NetworkError{URL: rawURL, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(&reading.NetworkError{URL: rawURL, Err: err})
	}
	return data, nil
}

// authHeader picks, in increasing priority, the provider token, the per-call token and the app token.
func (r *Reader) authHeader(opts reading.ReadOptions) http.Header {
	header := http.Header{}
	if r.cfg.Token != "" {
		header.Set("Authorization", "token "+r.cfg.Token)
	}
	if opts.Token != "" {
		header.Set("Authorization", "token "+opts.Token)
	}
	if opts.AppToken != "" {
		header.Set("Authorization", "Bearer "+opts.AppToken)
	}
	return header
}

// 🔗 APIURL converts
//
//	https://github.com/a/b/blob/branchname/path/to/c.yaml
//	https://api.github.com/repos/a/b/contents/path/to/c.yaml?ref=branchname
func (r *Reader) APIURL(target string) (string, error) {
	u, err := parseFileURL(target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", r.cfg.APIBaseURL, u.Owner, u.Name, strings.TrimPrefix(u.Filepath, "/"), u.Ref), nil
}

// 🔗 RawURL converts
//
//	https://github.com/a/b/blob/branchname/c.yaml
//	https://raw.githubusercontent.com/a/b/branchname/c.yaml
func (r *Reader) RawURL(target string) (string, error) {
	u, err := parseFileURL(target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", r.cfg.RawBaseURL, u.Owner, u.Name, u.Ref, strings.TrimPrefix(u.Filepath, "/")), nil
}

func parseFileURL(target string) (*giturl.URL, error) {
	u, err := giturl.Parse(target)
	if err != nil {
		return nil, errors.Errorf("%w: Incorrect URL: %s, %s", reading.ErrInput, target, err.Error())
	}
	if u.Owner == "" || u.Name == "" || u.Ref == "" || (u.FilepathType != "blob" && u.FilepathType != "raw") {
		return nil, errors.Errorf("%w: Incorrect URL: %s, invalid GitHub URL or file path", reading.ErrInput, target)
	}
	return u, nil
}

// 🌳 ReadTree downloads <repo>/archive/<ref>.tar.gz and keeps the entries under filters.
// Filters are applied with reading.Match: no filters keeps the whole tree, and "docs"
// keeps docs/** but not docs2/**, unlike a plain string prefix.
// An empty ref falls back to the ref in repoURL, then to the default branch.
func (r *Reader) ReadTree(ctx context.Context, repoURL string, ref string, filters []string) (*reading.TreeResult, error) {
	logger := zerolog.Ctx(ctx)

	u, err := giturl.Parse(repoURL)
	if err != nil {
		return nil, errors.Errorf("%w: Incorrect URL: %s, %s", reading.ErrInput, repoURL, err.Error())
	}
	if ref == "" {
		ref = u.Ref
	}
	if ref == "" {
		ref = config.DefaultBranch
	}

	archiveURL := u.RepoURL() + "/archive/" + ref + ".tar.gz"
	logger.Info().Str("repo", u.FullName()).Str("ref", ref).Strs("filters", filters).Msg("downloading repository archive")

	body, err := reading.Get(ctx, r.http, repoURL, archiveURL, r.authHeader(reading.ReadOptions{}))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tree, err := reading.ExtractTree(ctx, body, u.Name+"-"+ref, filters)
	if err != nil {
		return nil, errors.Errorf("extracting %s: %w", archiveURL, err)
	}

	logger.Debug().Int("files", len(tree.Files())).Msg("archive extracted")
	return tree, nil
}

// String never includes the token.
func (r *Reader) String() string {
	return fmt.Sprintf("github{host=%s,authed=%t}", r.cfg.Host, r.cfg.Token != "")
}
