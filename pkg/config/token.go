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
)

// 🔑 ResolveSecrets expands every token-like field in place.
func (cfg *Config) ResolveSecrets(ctx context.Context) {
	for i := range cfg.Integrations.GitHub {
		cfg.Integrations.GitHub[i].Token = resolveToken(ctx, cfg.Integrations.GitHub[i].Token)
	}
	cfg.Checkout.Token = resolveToken(ctx, cfg.Checkout.Token)
	if cfg.Publish != nil {
		cfg.Publish.AccessKey = resolveToken(ctx, cfg.Publish.AccessKey)
		cfg.Publish.SecretKey = resolveToken(ctx, cfg.Publish.SecretKey)
	}
}

// resolveToken handles three forms:
//
//	${ENV_VAR}      read from the environment
//	/path/to/file   read and trimmed when the file exists
//	anything else   used as-is
func resolveToken(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, "${") && strings.HasSuffix(raw, "}") {
		return os.Getenv(raw[2 : len(raw)-1])
	}

	expanded := raw
	if strings.HasPrefix(expanded, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, expanded[2:])
		}
	}

	if strings.ContainsRune(expanded, os.PathSeparator) {
		if data, err := os.ReadFile(expanded); err == nil {
			return strings.TrimSpace(string(data))
		} else if !os.IsNotExist(err) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", expanded).Msg("token file could not be read, using value literally")
		}
	}

	return raw
}
