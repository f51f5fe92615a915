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

// Package prepare turns an entity into a local directory holding its docs.
package prepare

import (
	"context"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/entity"
	"github.com/walteh/docfetch/pkg/giturl"
	"github.com/walteh/docfetch/pkg/location"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
)

// Checkouter is satisfied by *checkout.Manager.
type Checkouter interface {
	Checkout(ctx context.Context, repoURL, branch, token string) (string, error)
}

// 📂 Directory resolves "dir:" docs references relative to where the entity's catalog file lives.
type Directory struct {
	reader   reading.Reader
	checkout Checkouter
	outDir   string
}

// New wires a preparer. outDir is where url trees are written, empty means a fresh temp dir per call.
func New(reader reading.Reader, checkout Checkouter, outDir string) *Directory {
	return &Directory{reader: reader, checkout: checkout, outDir: outDir}
}

// 🎯 Prepare returns techdocs-ref's target resolved against the managed-by-location directory.
// An absolute target is returned as is.
func (d *Directory) Prepare(ctx context.Context, e *entity.Entity, token string) (string, error) {
	ref, err := location.ParseReference(entity.AnnotationTechDocsRef, e)
	if err != nil {
		return "", err
	}

	managed, err := d.managedDir(ctx, e, token)
	if err != nil {
		return "", err
	}

	out := ref.Target
	if !filepath.IsAbs(out) {
		out = filepath.Join(managed, filepath.FromSlash(out))
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", out, err)
	}

	zerolog.Ctx(ctx).Info().Str("entity", e.Ref()).Str("dir", out).Msg("prepared docs directory")
	return out, nil
}

func (d *Directory) managedDir(ctx context.Context, e *entity.Entity, token string) (string, error) {
	logger := zerolog.Ctx(ctx)

	managed, err := location.ParseReference(entity.AnnotationManagedByLocation, e)
	if err != nil {
		return "", err
	}

	logger.Debug().Str("entity", e.Ref()).Str("type", string(managed.Type)).Msg("resolving managed-by-location")

	switch managed.Type {
	case location.TypeURL:
		return d.readTreeDir(ctx, managed.Target)
	case location.TypeGitHub, location.TypeGitLab, location.TypeAzureAPI:
		u, err := giturl.Parse(managed.Target)
		if err != nil {
			return "", errors.Errorf("%w: invalid repository location %q: %s", reading.ErrInput, managed.Target, err.Error())
		}
		branch, ok := e.Annotation(entity.AnnotationProjectSlugBranch)
		if !ok {
			branch = config.DefaultBranch
		}
		repo, err := d.checkout.Checkout(ctx, managed.Target, branch, token)
		if err != nil {
			return "", err
		}
		return filepath.Dir(filepath.Join(repo, filepath.FromSlash(u.Filepath))), nil
	case location.TypeFile:
		return filepath.Dir(managed.Target), nil
	default:
		return "", errors.Errorf("%w: Unable to resolve location type %s", reading.ErrInput, managed.Type)
	}
}

// readTreeDir materializes the folder holding the catalog file. Only that folder is written
// when target points into a repository, otherwise the whole tree is.
func (d *Directory) readTreeDir(ctx context.Context, target string) (string, error) {
	sub := ""
	if u, err := giturl.Parse(target); err == nil && u.Filepath != "" {
		if dir := path.Dir(u.Filepath); dir != "." {
			sub = dir
		}
	}

	var filters []string
	if sub != "" {
		filters = []string{sub}
	}

	tree, err := d.reader.ReadTree(ctx, target, "", filters)
	if err != nil {
		return "", err
	}

	root, err := tree.Dir(ctx, d.outDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(sub)), nil
}
