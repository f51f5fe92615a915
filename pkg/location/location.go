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

// Package location turns entity annotations such as "url:https://..." into typed references.
package location

import (
	"path/filepath"
	"strings"

	"github.com/walteh/docfetch/pkg/entity"
	"github.com/walteh/docfetch/pkg/reading"
	"gitlab.com/tozd/go/errors"
)

// Type is the protocol half of an annotation value.
type Type string

const (
	TypeGitHub   Type = "github"
	TypeGitLab   Type = "gitlab"
	TypeAzureAPI Type = "azure/api"
	TypeURL      Type = "url"
	TypeDir      Type = "dir"
	TypeFile     Type = "file"
)

// Known reports whether t is one of the supported protocols.
func (t Type) Known() bool {
	switch t {
	case TypeGitHub, TypeGitLab, TypeAzureAPI, TypeURL, TypeDir, TypeFile:
		return true
	}
	return false
}

// IsGit reports whether t is served by a repository checkout.
func (t Type) IsGit() bool {
	return t == TypeGitHub || t == TypeGitLab || t == TypeAzureAPI
}

// 📍 Reference is a parsed "<type>:<target>" annotation value.
type Reference struct {
	Type   Type
	Target string
}

func (r Reference) String() string {
	return string(r.Type) + ":" + r.Target
}

// 🎯 ParseReference splits annotations[key] on its first colon. Both halves must be non-empty.
// Every failure wraps reading.ErrInput.
func ParseReference(key string, e *entity.Entity) (Reference, error) {
	value, ok := e.Annotation(key)
	if !ok {
		return Reference{}, errors.Errorf("%w: no location annotation %s provided in entity %s", reading.ErrInput, key, entityName(e))
	}

	typ, target, _ := strings.Cut(value, ":")
	if typ == "" || target == "" {
		return Reference{}, errors.Errorf("%w: failed to parse protocol or location %q for entity %s", reading.ErrInput, value, entityName(e))
	}

	return Reference{Type: Type(typ), Target: target}, nil
}

// 📚 ForEntity resolves where an entity's docs live. A relative dir reference means
// "next to the catalog file", so the managed-by-location annotation is returned instead.
func ForEntity(e *entity.Entity) (Reference, error) {
	ref, err := ParseReference(entity.AnnotationTechDocsRef, e)
	if err != nil {
		return Reference{}, err
	}

	switch ref.Type {
	case TypeGitHub, TypeGitLab, TypeAzureAPI, TypeURL:
		return ref, nil
	case TypeDir:
		if filepath.IsAbs(ref.Target) {
			return ref, nil
		}
		return ParseReference(entity.AnnotationManagedByLocation, e)
	default:
		return Reference{}, errors.Errorf("%w: invalid reference annotation %s", reading.ErrInput, ref.Type)
	}
}

func entityName(e *entity.Entity) string {
	if e == nil {
		return "<nil>"
	}
	return e.Metadata.Name
}
