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

package entity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogInfo = `
apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: docs-site
  annotations:
    backstage.io/techdocs-ref: dir:.
    backstage.io/managed-by-location: url:https://github.com/a/b/blob/main/catalog-info.yaml
---
apiVersion: backstage.io/v1alpha1
kind: API
metadata:
  name: petstore
  namespace: apis
`

func TestParse(t *testing.T) {
	entities, err := Parse([]byte(catalogInfo))
	require.NoError(t, err, "parse should succeed")
	require.Len(t, entities, 2, "both documents should be parsed")

	first := entities[0]
	assert.Equal(t, "Component", first.Kind, "kind should match")
	assert.Equal(t, DefaultNamespace, first.Namespace(), "namespace should default")
	assert.Equal(t, "Component:default/docs-site", first.Ref(), "ref should render")

	v, ok := first.Annotation(AnnotationTechDocsRef)
	assert.True(t, ok, "techdocs ref should be present")
	assert.Equal(t, "dir:.", v, "techdocs ref should match")

	_, ok = entities[1].Annotation(AnnotationTechDocsRef)
	assert.False(t, ok, "missing annotations should report absent")
	assert.Equal(t, "API:apis/petstore", entities[1].Ref(), "namespace should be kept")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		errContains string
	}{
		{name: "no_name", data: "kind: Component\nmetadata: {}\n", errContains: "has no metadata.name"},
		{name: "bad_yaml", data: "kind: [", errContains: "decoding entity document 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err, "parse should fail")
			assert.Contains(t, err.Error(), tt.errContains, "error should explain")
		})
	}
}

func TestLoadFileAndSelect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog-info.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogInfo), 0o644), "write should succeed")

	entities, err := LoadFile(path)
	require.NoError(t, err, "load should succeed")

	_, err = Select(entities, "")
	require.Error(t, err, "ambiguous selection should fail")

	e, err := Select(entities, "petstore")
	require.NoError(t, err, "select by name should succeed")
	assert.Equal(t, "apis", e.Metadata.Namespace, "selected entity should match")

	_, err = Select(entities, "missing")
	require.Error(t, err, "unknown name should fail")
}

func TestAnnotationNilEntity(t *testing.T) {
	var e *Entity
	_, ok := e.Annotation(AnnotationTechDocsRef)
	assert.False(t, ok, "nil entity has no annotations")
}
