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

// Package entity holds the catalog entity shape needed to locate remote content.
package entity

import (
	"bytes"
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// AnnotationTechDocsRef points at the documentation source of an entity.
	AnnotationTechDocsRef = "backstage.io/techdocs-ref"
	// AnnotationManagedByLocation is the location the catalog ingested the entity from.
	AnnotationManagedByLocation = "backstage.io/managed-by-location"
	// AnnotationProjectSlugBranch overrides the branch used when checking out the managing repository.
	AnnotationProjectSlugBranch = "github.com/project-slug-branch"

	DefaultNamespace = "default"
)

// 📚 Entity is a catalog record. Only the fields used for location resolution are modeled.
type Entity struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
}

type Metadata struct {
	Name        string            `yaml:"name" json:"name"`
	Namespace   string            `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Annotation returns the value and whether it was present and non-empty.
func (e *Entity) Annotation(key string) (string, bool) {
	if e == nil || e.Metadata.Annotations == nil {
		return "", false
	}
	v, ok := e.Metadata.Annotations[key]
	return v, ok && v != ""
}

// Namespace defaults to "default".
func (e *Entity) Namespace() string {
	if e.Metadata.Namespace == "" {
		return DefaultNamespace
	}
	return e.Metadata.Namespace
}

// 📝 Ref renders the entity as kind:namespace/name.
func (e *Entity) Ref() string {
	return e.Kind + ":" + e.Namespace() + "/" + e.Metadata.Name
}

// 🔍 Parse reads every YAML document in data. Empty documents are skipped.
func Parse(data []byte) ([]*Entity, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var out []*Entity
	for i := 0; ; i++ {
		var e Entity
		err := decoder.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Errorf("decoding entity document %d: %w", i, err)
		}
		if e.Kind == "" && e.Metadata.Name == "" {
			continue
		}
		if e.Metadata.Name == "" {
			return nil, errors.Errorf("entity document %d has no metadata.name", i)
		}
		out = append(out, &e)
	}

	return out, nil
}

// LoadFile parses a catalog-info file.
func LoadFile(path string) ([]*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading entity file: %w", err)
	}
	entities, err := Parse(data)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	return entities, nil
}

// 🎯 Select returns the entity named name, or the only entity when name is empty.
func Select(entities []*Entity, name string) (*Entity, error) {
	if name == "" {
		if len(entities) != 1 {
			return nil, errors.Errorf("expected exactly one entity, found %d; pick one by name", len(entities))
		}
		return entities[0], nil
	}
	for _, e := range entities {
		if e.Metadata.Name == name {
			return e, nil
		}
	}
	return nil, errors.Errorf("entity %q not found", name)
}
