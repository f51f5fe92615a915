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

// Package checkout keeps a local clone per repository and branch under a shared root.
package checkout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/giturl"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/singleflight"
)

// RootDirName is created under the system temp dir when no root is configured.
const RootDirName = "backstage-repo"

// ErrUnrecoverable means a cached clone failed to refresh and the fresh clone also failed.
var ErrUnrecoverable = errors.Base("repository cache is unrecoverable")

// UnrecoverableError carries both failures of a bounded reclone.
type UnrecoverableError struct {
	Dir     string
	Refresh error
	Clone   error
}

func (e *UnrecoverableError) Error() string {
	return fmt.Sprintf("%s: %s: refresh failed (%s), reclone failed (%s)", ErrUnrecoverable.Error(), e.Dir, e.Refresh, e.Clone)
}

func (e *UnrecoverableError) Unwrap() []error {
	return []error{ErrUnrecoverable, e.Clone}
}

// 📦 Manager owns the checkout root. Work on one path is serialized,
// concurrent callers for the same path share the result of the first.
type Manager struct {
	root          string
	defaultBranch string
	token         string
	git           GitClient
	group         singleflight.Group
}

// 🏭 New resolves the root. An empty cfg.Root uses <tmp>/backstage-repo with symlinks resolved.
func New(cfg config.CheckoutConfig, git GitClient) (*Manager, error) {
	root := cfg.Root
	if root == "" {
		tmp, err := filepath.EvalSymlinks(os.TempDir())
		if err != nil {
			return nil, errors.Errorf("resolving temp dir: %w", err)
		}
		root = filepath.Join(tmp, RootDirName)
	}

	branch := cfg.DefaultBranch
	if branch == "" {
		branch = config.DefaultBranch
	}

	if git == nil {
		git = GoGit{}
	}

	return &Manager{root: root, defaultBranch: branch, token: cfg.Token, git: git}, nil
}

// Root is the directory every checkout lives under.
func (m *Manager) Root() string {
	return m.root
}

// 📍 Path is <root>/<host>/<owner>/<name>/<branch>. It never touches the filesystem.
func (m *Manager) Path(repoURL, branch string) (string, error) {
	u, err := parseRepo(repoURL)
	if err != nil {
		return "", err
	}
	return m.path(u, branch), nil
}

func (m *Manager) path(u *giturl.URL, branch string) string {
	if branch == "" {
		branch = m.defaultBranch
	}
	return filepath.Join(m.root, u.Source, filepath.FromSlash(u.Owner), u.Name, branch)
}

// 🔄 Checkout makes sure an up to date clone of repoURL@branch exists and returns its path.
//
// An existing clone is refreshed. If that fails the directory is removed and cloned
// again exactly once. A second failure returns an error wrapping ErrUnrecoverable.
func (m *Manager) Checkout(ctx context.Context, repoURL, branch, token string) (string, error) {
	u, err := parseRepo(repoURL)
	if err != nil {
		return "", err
	}

	dir := m.path(u, branch)
	cloneURL, creds := Shape(u, m.resolveToken(token))

	_, err, shared := m.group.Do(dir, func() (any, error) {
		return nil, m.checkout(ctx, dir, cloneURL, branch, creds)
	})
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Bool("shared", shared).Msg("checkout ready")
	return dir, nil
}

func (m *Manager) checkout(ctx context.Context, dir, cloneURL, branch string, creds *Credentials) error {
	logger := zerolog.Ctx(ctx).With().Str("dir", dir).Logger()

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return errors.Errorf("checking %s: %w", dir, err)
		}
		logger.Info().Msg("cloning repository")
		return m.clone(ctx, dir, cloneURL, branch, creds)
	}

	refreshErr := m.git.Refresh(ctx, dir, creds)
	if refreshErr == nil {
		logger.Debug().Msg("refreshed cached repository")
		return nil
	}
	if ctx.Err() != nil {
		return errors.Errorf("refreshing %s: %w", dir, refreshErr)
	}

	logger.Warn().Err(refreshErr).Msg("cached repository could not be refreshed, recloning")

	if err := os.RemoveAll(dir); err != nil {
		return errors.Errorf("removing %s: %w", dir, err)
	}
	if err := m.clone(ctx, dir, cloneURL, branch, creds); err != nil {
		return errors.WithStack(&UnrecoverableError{Dir: dir, Refresh: refreshErr, Clone: err})
	}
	return nil
}

func (m *Manager) clone(ctx context.Context, dir, cloneURL, branch string, creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return errors.Errorf("creating %s: %w", filepath.Dir(dir), err)
	}
	if err := m.git.Clone(ctx, dir, cloneURL, branch, creds); err != nil {
		_ = os.RemoveAll(dir)
		return errors.Errorf("cloning into %s: %w", dir, err)
	}
	return nil
}

// ⏱️ LastCommitTimestamp checks out repoURL@branch and returns the HEAD commit time in unix seconds.
func (m *Manager) LastCommitTimestamp(ctx context.Context, repoURL, branch, token string) (int64, error) {
	dir, err := m.Checkout(ctx, repoURL, branch, token)
	if err != nil {
		return 0, err
	}
	when, err := m.git.HeadCommitTime(ctx, dir)
	if err != nil {
		return 0, errors.Errorf("reading last commit of %s: %w", dir, err)
	}
	return when.Unix(), nil
}

// resolveToken prefers the per-call token, then the configured one, then GITHUB_TOKEN.
func (m *Manager) resolveToken(token string) string {
	if token != "" {
		return token
	}
	if m.token != "" {
		return m.token
	}
	return os.Getenv("GITHUB_TOKEN")
}

func parseRepo(repoURL string) (*giturl.URL, error) {
	u, err := giturl.Parse(repoURL)
	if err != nil {
		return nil, errors.Errorf("%w: invalid repository url %q: %s", reading.ErrInput, repoURL, err.Error())
	}
	if u.Source == "" {
		return nil, errors.Errorf("%w: repository url %q has no host", reading.ErrInput, repoURL)
	}
	return u, nil
}

func (m *Manager) String() string {
	return fmt.Sprintf("checkout{root=%s,default=%s}", m.root, m.defaultBranch)
}
