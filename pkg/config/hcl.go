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
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL. The environment is exposed as `env.NAME`.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "docfetch.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	type hclConfig struct {
		Integrations *struct {
			GitHub []struct {
				Host       string `hcl:"host,optional"`
				APIBaseURL string `hcl:"api_base_url,optional"`
				RawBaseURL string `hcl:"raw_base_url,optional"`
				Token      string `hcl:"token,optional"`
			} `hcl:"github,block"`
			URL []struct {
				Host string `hcl:"host"`
			} `hcl:"url,block"`
		} `hcl:"integrations,block"`
		Checkout *struct {
			Root          string `hcl:"root,optional"`
			DefaultBranch string `hcl:"default_branch,optional"`
			Token         string `hcl:"token,optional"`
		} `hcl:"checkout,block"`
		HTTP *struct {
			Timeout string `hcl:"timeout,optional"`
		} `hcl:"http,block"`
		Cache *struct {
			Size int    `hcl:"size,optional"`
			TTL  string `hcl:"ttl,optional"`
		} `hcl:"cache,block"`
		Publish *struct {
			Endpoint  string `hcl:"endpoint"`
			Region    string `hcl:"region,optional"`
			Bucket    string `hcl:"bucket"`
			AccessKey string `hcl:"access_key,optional"`
			SecretKey string `hcl:"secret_key,optional"`
			UseSSL    bool   `hcl:"use_ssl,optional"`
		} `hcl:"publish,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{}
	if in := hclCfg.Integrations; in != nil {
		for _, gh := range in.GitHub {
			cfg.Integrations.GitHub = append(cfg.Integrations.GitHub, GitHubIntegration{
				Host:       gh.Host,
				APIBaseURL: gh.APIBaseURL,
				RawBaseURL: gh.RawBaseURL,
				Token:      gh.Token,
			})
		}
		for _, u := range in.URL {
			cfg.Integrations.URL = append(cfg.Integrations.URL, URLIntegration{Host: u.Host})
		}
	}
	if c := hclCfg.Checkout; c != nil {
		cfg.Checkout = CheckoutConfig{Root: c.Root, DefaultBranch: c.DefaultBranch, Token: c.Token}
	}
	if h := hclCfg.HTTP; h != nil {
		cfg.HTTP.Timeout = h.Timeout
	}
	if c := hclCfg.Cache; c != nil {
		cfg.Cache.Size = c.Size
		cfg.Cache.TTL = c.TTL
	}
	if pub := hclCfg.Publish; pub != nil {
		cfg.Publish = &PublishConfig{
			Endpoint:  pub.Endpoint,
			Region:    pub.Region,
			Bucket:    pub.Bucket,
			AccessKey: pub.AccessKey,
			SecretKey: pub.SecretKey,
			UseSSL:    pub.UseSSL,
		}
	}

	return cfg, nil
}

func envObject() cty.Value {
	vals := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vals[k] = cty.StringVal(v)
	}
	if len(vals) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vals)
}
