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

package checkout

import (
	"net/url"
	"strings"

	"github.com/walteh/docfetch/pkg/giturl"
)

// RepoType selects how a token is presented to the git server.
type RepoType string

const (
	RepoTypeGitHub  RepoType = "github"
	RepoTypeGitLab  RepoType = "gitlab"
	RepoTypeAzure   RepoType = "azure/api"
	RepoTypeGeneric RepoType = "generic"
)

// DetectRepoType looks at the host name only.
func DetectRepoType(host string) RepoType {
	h := strings.ToLower(host)
	switch {
	case strings.Contains(h, "github"):
		return RepoTypeGitHub
	case strings.Contains(h, "gitlab"):
		return RepoTypeGitLab
	case giturl.IsAzureHost(h) || strings.Contains(h, "azure"):
		return RepoTypeAzure
	default:
		return RepoTypeGeneric
	}
}

// Credentials is HTTP basic auth for git. A nil *Credentials means anonymous,
// or that the credentials already live in the clone URL.
type Credentials struct {
	Username string
	Password string
}

// 🔑 Shape returns the clone URL and credentials for u and token:
//
//	github   token / x-oauth-basic
//	gitlab   oauth2 / token, ".git" suffix forced
//	azure    notempty / token
//	generic  token embedded in the URL as ":token"
func Shape(u *giturl.URL, token string) (string, *Credentials) {
	if token == "" {
		return u.CloneURL(nil, false), nil
	}

	switch DetectRepoType(u.Source) {
	case RepoTypeGitHub:
		return u.CloneURL(nil, false), &Credentials{Username: token, Password: "x-oauth-basic"}
	case RepoTypeGitLab:
		return u.CloneURL(nil, true), &Credentials{Username: "oauth2", Password: token}
	case RepoTypeAzure:
		return u.CloneURL(nil, false), &Credentials{Username: "notempty", Password: token}
	default:
		return u.CloneURL(url.UserPassword("", token), false), nil
	}
}
