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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 Load reads a configuration file, resolves secrets and validates it.
// The format is picked from the extension; a bare .docfetch file is tried as YAML then HCL.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(ctx, path, data)
	if err != nil {
		return nil, err
	}

	cfg.ResolveSecrets(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")

	return cfg, nil
}

// Default returns a validated configuration with nothing but the built-in github.com integration.
func Default(ctx context.Context) (*Config, error) {
	cfg := &Config{}
	cfg.ResolveSecrets(ctx)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating default config: %w", err)
	}
	return cfg, nil
}

func parse(ctx context.Context, path string, data []byte) (*Config, error) {
	base := filepath.Base(path)
	if strings.EqualFold(base, ".docfetch") {
		cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data)
		if yamlErr == nil {
			return cfg, nil
		}
		cfg, hclErr := (&HCLParser{}).Parse(ctx, data)
		if hclErr == nil {
			return cfg, nil
		}
		return nil, errors.Errorf("failed to parse %s as YAML (%v) or HCL: %w", base, yamlErr, hclErr)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// FindConfigFile searches the working directory and the user's config directories.
func FindConfigFile() (string, error) {
	locations := []string{".", ".config"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, home, filepath.Join(home, ".config"))
	}

	names := []string{
		".docfetch.yaml",
		".docfetch.yml",
		".docfetch.json",
		".docfetch.hcl",
		".docfetch.toml",
		".docfetch",
	}

	for _, loc := range locations {
		for _, name := range names {
			p := filepath.Join(loc, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}
