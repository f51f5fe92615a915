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

// Package giturl splits git hosting URLs into owner, repository, ref and file path.
package giturl

import (
	"net/url"
	"path"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔗 URL is a parsed git hosting location.
//
//	https://github.com/a/b/blob/main/docs/index.md
//	        ^ Source   ^ ^ ^    ^    ^ Filepath
//	                   | | |    Ref
//	                   | | FilepathType
//	                   | Name
//	                   Owner
type URL struct {
	Protocol     string
	Host         string // host[:port]
	Source       string // hostname without port
	Organization string // azure only
	Owner        string
	Name         string
	FilepathType string
	Ref          string
	Filepath     string
	Token        string
}

// 🎯 Parse understands https/http URLs, scheme-less host paths and scp-like ssh remotes
// for GitHub, GitLab (including the "/-/" separator) and Azure DevOps.
func Parse(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty git url")
	}

	if u, ok := parseSCP(raw); ok {
		return u, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	pu, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Errorf("parsing git url %q: %w", raw, err)
	}
	if pu.Host == "" {
		return nil, errors.Errorf("git url %q has no host", raw)
	}

	out := &URL{
		Protocol: pu.Scheme,
		Host:     pu.Host,
		Source:   pu.Hostname(),
	}
	if pu.User != nil {
		if pw, ok := pu.User.Password(); ok {
			out.Token = pw
		} else {
			out.Token = pu.User.Username()
		}
	}

	segments := splitPath(pu.Path)

	switch {
	case IsAzureHost(out.Source):
		parseAzure(out, segments, pu.Query())
	case containsSegment(segments, "-"):
		parseGitLab(out, segments)
	default:
		parseDefault(out, segments)
	}

	if out.Owner == "" || out.Name == "" {
		return nil, errors.Errorf("git url %q is missing owner or repository name", raw)
	}

	return out, nil
}

// git@github.com:owner/repo.git
func parseSCP(raw string) (*URL, bool) {
	if strings.Contains(raw, "://") {
		return nil, false
	}
	at := strings.Index(raw, "@")
	colon := strings.Index(raw, ":")
	if at < 0 || colon < at {
		return nil, false
	}
	host := raw[at+1 : colon]
	out := &URL{Protocol: "ssh", Host: host, Source: host}
	parseDefault(out, splitPath(raw[colon+1:]))
	if out.Owner == "" || out.Name == "" {
		return nil, false
	}
	return out, true
}

func parseDefault(out *URL, segments []string) {
	if len(segments) < 2 {
		return
	}
	out.Owner = segments[0]
	out.Name = trimGit(segments[1])
	if len(segments) > 2 {
		out.FilepathType = segments[2]
	}
	if len(segments) > 3 {
		out.Ref = segments[3]
	}
	if len(segments) > 4 {
		out.Filepath = path.Join(segments[4:]...)
	}
}

// group/subgroup/repo/-/blob/main/docs/index.md
func parseGitLab(out *URL, segments []string) {
	idx := indexSegment(segments, "-")
	repo := segments[:idx]
	rest := segments[idx+1:]
	if len(repo) < 2 {
		return
	}
	out.Owner = path.Join(repo[:len(repo)-1]...)
	out.Name = trimGit(repo[len(repo)-1])
	if len(rest) > 0 {
		out.FilepathType = rest[0]
	}
	if len(rest) > 1 {
		out.Ref = rest[1]
	}
	if len(rest) > 2 {
		out.Filepath = path.Join(rest[2:]...)
	}
}

// org/project/_git/repo?path=/docs&version=GBmain
func parseAzure(out *URL, segments []string, query url.Values) {
	idx := indexSegment(segments, "_git")
	if idx < 1 || idx+1 >= len(segments) {
		return
	}
	if idx >= 2 {
		out.Organization = segments[idx-2]
	} else {
		out.Organization = strings.TrimSuffix(out.Source, ".visualstudio.com")
	}
	out.Owner = segments[idx-1]
	out.Name = trimGit(segments[idx+1])
	if p := query.Get("path"); p != "" {
		out.Filepath = strings.TrimPrefix(p, "/")
	}
	if v := query.Get("version"); v != "" {
		out.Ref = strings.TrimPrefix(strings.TrimPrefix(v, "GB"), "GT")
	}
}

// FullName is "owner/name".
func (u *URL) FullName() string {
	return u.Owner + "/" + u.Name
}

// 🔗 CloneURL renders an https clone URL. The ref and file path are dropped.
func (u *URL) CloneURL(user *url.Userinfo, gitSuffix bool) string {
	var p string
	if IsAzureHost(u.Source) && u.Organization != "" {
		p = "/" + path.Join(u.Organization, u.Owner, "_git", u.Name)
		if strings.HasSuffix(u.Source, ".visualstudio.com") {
			p = "/" + path.Join(u.Owner, "_git", u.Name)
		}
	} else {
		p = "/" + path.Join(u.Owner, u.Name)
	}
	if gitSuffix {
		p += ".git"
	}

	scheme := u.Protocol
	if scheme != "http" {
		scheme = "https"
	}

	out := url.URL{Scheme: scheme, Host: u.Host, Path: p, User: user}
	return out.String()
}

// RepoURL is the https location of the repository, used as the base for archive downloads.
func (u *URL) RepoURL() string {
	return u.CloneURL(nil, false)
}

// IsAzureHost reports whether host serves Azure DevOps repositories.
func IsAzureHost(host string) bool {
	return host == "dev.azure.com" || strings.HasSuffix(host, ".visualstudio.com")
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func trimGit(name string) string {
	return strings.TrimSuffix(name, ".git")
}

func containsSegment(segments []string, s string) bool {
	return indexSegment(segments, s) >= 0
}

func indexSegment(segments []string, s string) int {
	for i, seg := range segments {
		if seg == s {
			return i
		}
	}
	return -1
}
