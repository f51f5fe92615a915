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
	"context"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"gitlab.com/tozd/go/errors"
)

const remoteName = "origin"

// 🔌 GitClient is the subset of git the cache needs
type GitClient interface {
	// Clone clones url into dir. An empty branch clones the remote HEAD.
	Clone(ctx context.Context, dir, url, branch string, creds *Credentials) error
	// Refresh fetches origin and fast-forwards the current branch onto origin/<branch>.
	Refresh(ctx context.Context, dir string, creds *Credentials) error
	// HeadCommitTime is the committer time of HEAD.
	HeadCommitTime(ctx context.Context, dir string) (time.Time, error)
}

// GoGit implements GitClient in-process with go-git.
type GoGit struct{}

var _ GitClient = GoGit{}

func (GoGit) Clone(ctx context.Context, dir, url, branch string, creds *Credentials) error {
	opts := &git.CloneOptions{
		URL:        url,
		Auth:       authMethod(creds),
		RemoteName: remoteName,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return errors.Errorf("cloning: %w", err)
	}
	return nil
}

func (GoGit) Refresh(ctx context.Context, dir string, creds *Credentials) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return errors.Errorf("resolving HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return errors.Errorf("HEAD is detached at %s", head.Hash())
	}
	branch := head.Name().Short()

	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: remoteName, Auth: authMethod(creds)})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Errorf("fetching %s: %w", remoteName, err)
	}

	remote, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if err != nil {
		return errors.Errorf("resolving %s/%s: %w", remoteName, branch, err)
	}

	if err := repo.Merge(*remote, git.MergeOptions{Strategy: git.FastForwardMerge}); err != nil {
		return errors.Errorf("merging %s/%s into %s: %w", remoteName, branch, branch, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return errors.Errorf("opening worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: remote.Hash()}); err != nil {
		return errors.Errorf("updating worktree: %w", err)
	}

	return nil
}

func (GoGit) HeadCommitTime(ctx context.Context, dir string) (time.Time, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return time.Time{}, errors.Errorf("opening repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return time.Time{}, errors.Errorf("resolving HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return time.Time{}, errors.Errorf("reading commit %s: %w", head.Hash(), err)
	}
	return commit.Committer.When, nil
}

func authMethod(creds *Credentials) transport.AuthMethod {
	if creds == nil {
		return nil
	}
	return &githttp.BasicAuth{Username: creds.Username, Password: creds.Password}
}
