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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

const (
	GitHubHost       = "github.com"
	GitHubAPIBaseURL = "https://api.github.com"
	GitHubRawBaseURL = "https://raw.githubusercontent.com"

	DefaultBranch      = "master"
	DefaultHTTPTimeout = 60 * time.Second
	DefaultCacheTTL    = 5 * time.Minute
)

// ErrInvalid marks every configuration problem detected at load time.
var ErrInvalid = errors.Base("invalid configuration")

// 📚 Config is the process-wide configuration, built once at startup and passed down explicitly
type Config struct {
	Integrations Integrations   `json:"integrations" yaml:"integrations" toml:"integrations"`
	Checkout     CheckoutConfig `json:"checkout" yaml:"checkout" toml:"checkout"`
	HTTP         HTTPConfig     `json:"http" yaml:"http" toml:"http"`
	Cache        CacheConfig    `json:"cache" yaml:"cache" toml:"cache"`
	Publish      *PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty" toml:"publish,omitempty"`
}

// 🔌 Integrations lists the remote hosts readers are built for
type Integrations struct {
	GitHub []GitHubIntegration `json:"github" yaml:"github" toml:"github"`
	URL    []URLIntegration    `json:"url" yaml:"url" toml:"url"`
}

// 🐙 GitHubIntegration configures one GitHub-style host (github.com or an enterprise install)
type GitHubIntegration struct {
	Host       string `json:"host" yaml:"host" toml:"host"`
	APIBaseURL string `json:"api_base_url" yaml:"api_base_url" toml:"api_base_url"`
	RawBaseURL string `json:"raw_base_url" yaml:"raw_base_url" toml:"raw_base_url"`
	Token      string `json:"token" yaml:"token" toml:"token"`
}

// 🌐 URLIntegration allows plain HTTP reads from hosts matching a glob (e.g. "*.example.com")
type URLIntegration struct {
	Host string `json:"host" yaml:"host" toml:"host"`
}

// 📦 CheckoutConfig controls the local repository cache
type CheckoutConfig struct {
	Root          string `json:"root" yaml:"root" toml:"root"`
	DefaultBranch string `json:"default_branch" yaml:"default_branch" toml:"default_branch"`
	Token         string `json:"token" yaml:"token" toml:"token"`
}

type HTTPConfig struct {
	Timeout string `json:"timeout" yaml:"timeout" toml:"timeout"`

	timeout time.Duration
}

// TimeoutDuration is only meaningful after Validate.
func (h HTTPConfig) TimeoutDuration() time.Duration {
	if h.timeout == 0 {
		return DefaultHTTPTimeout
	}
	return h.timeout
}

type CacheConfig struct {
	Size int    `json:"size" yaml:"size" toml:"size"`
	TTL  string `json:"ttl" yaml:"ttl" toml:"ttl"`

	ttl time.Duration
}

func (c CacheConfig) TTLDuration() time.Duration {
	if c.ttl == 0 {
		return DefaultCacheTTL
	}
	return c.ttl
}

// ☁️ PublishConfig points at an S3-compatible bucket for materialized trees
type PublishConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	Region    string `json:"region" yaml:"region" toml:"region"`
	Bucket    string `json:"bucket" yaml:"bucket" toml:"bucket"`
	AccessKey string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl" toml:"use_ssl"`
}

// 🔍 Validate normalizes the configuration in place and reports the first problem found
func (cfg *Config) Validate() error {
	for i := range cfg.Integrations.GitHub {
		gh, err := normalizeGitHub(cfg.Integrations.GitHub[i])
		if err != nil {
			return errors.Errorf("integrations.github[%d]: %w", i, err)
		}
		cfg.Integrations.GitHub[i] = gh
	}

	if !cfg.hasGitHubHost(GitHubHost) {
		cfg.Integrations.GitHub = append(cfg.Integrations.GitHub, GitHubIntegration{
			Host:       GitHubHost,
			APIBaseURL: GitHubAPIBaseURL,
			RawBaseURL: GitHubRawBaseURL,
		})
	}

	for i, u := range cfg.Integrations.URL {
		if strings.TrimSpace(u.Host) == "" {
			return errors.Errorf("%w: integrations.url[%d].host is required", ErrInvalid, i)
		}
	}

	if cfg.Checkout.DefaultBranch == "" {
		cfg.Checkout.DefaultBranch = DefaultBranch
	}

	if cfg.HTTP.Timeout != "" {
		d, err := time.ParseDuration(cfg.HTTP.Timeout)
		if err != nil || d <= 0 {
			return errors.Errorf("%w: http.timeout %q is not a positive duration", ErrInvalid, cfg.HTTP.Timeout)
		}
		cfg.HTTP.timeout = d
	}

	if cfg.Cache.Size < 0 {
		return errors.Errorf("%w: cache.size must not be negative", ErrInvalid)
	}
	if cfg.Cache.TTL != "" {
		d, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil || d <= 0 {
			return errors.Errorf("%w: cache.ttl %q is not a positive duration", ErrInvalid, cfg.Cache.TTL)
		}
		cfg.Cache.ttl = d
	}

	if p := cfg.Publish; p != nil {
		if p.Endpoint == "" {
			return errors.Errorf("%w: publish.endpoint is required", ErrInvalid)
		}
		if p.Bucket == "" {
			return errors.Errorf("%w: publish.bucket is required", ErrInvalid)
		}
	}

	return nil
}

func (cfg *Config) hasGitHubHost(host string) bool {
	for _, gh := range cfg.Integrations.GitHub {
		if gh.Host == host {
			return true
		}
	}
	return false
}

func normalizeGitHub(gh GitHubIntegration) (GitHubIntegration, error) {
	gh.Host = strings.TrimSpace(gh.Host)
	if gh.Host == "" {
		gh.Host = GitHubHost
	}
	if !IsValidHost(gh.Host) {
		return gh, errors.Errorf("%w: %q is not a valid host", ErrInvalid, gh.Host)
	}

	if gh.APIBaseURL != "" {
		gh.APIBaseURL = strings.TrimRight(gh.APIBaseURL, "/")
	} else if gh.Host == GitHubHost {
		gh.APIBaseURL = GitHubAPIBaseURL
	}

	if gh.RawBaseURL != "" {
		gh.RawBaseURL = strings.TrimRight(gh.RawBaseURL, "/")
	} else if gh.Host == GitHubHost {
		gh.RawBaseURL = GitHubRawBaseURL
	}

	if gh.APIBaseURL == "" && gh.RawBaseURL == "" {
		return gh, errors.Errorf("%w: github integration for %q must configure an explicit api_base_url or raw_base_url", ErrInvalid, gh.Host)
	}

	return gh, nil
}

// IsValidHost accepts a bare host with an optional port.
func IsValidHost(host string) bool {
	if host == "" {
		return false
	}
	u, err := url.Parse("https://" + host + "/a")
	if err != nil {
		return false
	}
	return u.Host == host && u.Path == "/a" && u.User == nil
}

// 📝 String returns a short summary safe to log
func (cfg *Config) String() string {
	hosts := make([]string, 0, len(cfg.Integrations.GitHub))
	for _, gh := range cfg.Integrations.GitHub {
		hosts = append(hosts, fmt.Sprintf("%s(authed=%t)", gh.Host, gh.Token != ""))
	}
	return fmt.Sprintf("github=[%s] checkout=%s cache=%d", strings.Join(hosts, ","), cfg.Checkout.Root, cfg.Cache.Size)
}
