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

package location

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docfetch/pkg/entity"
	"github.com/walteh/docfetch/pkg/reading"
)

func withAnnotations(annotations map[string]string) *entity.Entity {
	return &entity.Entity{
		Kind:     "Component",
		Metadata: entity.Metadata{Name: "svc", Annotations: annotations},
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name        string
		value       *string
		want        Reference
		errContains string
	}{
		{name: "url", value: ptr("url:https://github.com/a/b"), want: Reference{Type: TypeURL, Target: "https://github.com/a/b"}},
		{name: "dir", value: ptr("dir:."), want: Reference{Type: TypeDir, Target: "."}},
		{name: "azure_type_has_slash", value: ptr("azure/api:https://dev.azure.com/o/p/_git/r"), want: Reference{Type: TypeAzureAPI, Target: "https://dev.azure.com/o/p/_git/r"}},
		{name: "splits_on_first_colon_only", value: ptr("file:c:/docs"), want: Reference{Type: TypeFile, Target: "c:/docs"}},
		{name: "unknown_type_is_kept", value: ptr("svn:repo"), want: Reference{Type: "svn", Target: "repo"}},
		{name: "missing", value: nil, errContains: "no location annotation"},
		{name: "empty_value", value: ptr(""), errContains: "no location annotation"},
		{name: "no_colon", value: ptr("github"), errContains: "failed to parse protocol or location"},
		{name: "empty_type", value: ptr(":target"), errContains: "failed to parse protocol or location"},
		{name: "empty_target", value: ptr("url:"), errContains: "failed to parse protocol or location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := map[string]string{}
			if tt.value != nil {
				annotations[entity.AnnotationTechDocsRef] = *tt.value
			}

			got, err := ParseReference(entity.AnnotationTechDocsRef, withAnnotations(annotations))
			if tt.errContains != "" {
				require.Error(t, err, "parse should fail")
				assert.ErrorIs(t, err, reading.ErrInput, "failure should be an input error")
				assert.Contains(t, err.Error(), tt.errContains, "error should explain")
				return
			}
			require.NoError(t, err, "parse should succeed")
			assert.Equal(t, tt.want, got, "reference should match")
		})
	}
}

// Every "type:target" with non-empty halves round-trips, and every value without a colon fails.
func TestParseReferenceProperties(t *testing.T) {
	types := []string{"github", "gitlab", "azure/api", "url", "dir", "file", "x"}
	targets := []string{"a", "https://h/o/r", "./docs", "/abs", "with:colon", " "}

	for _, typ := range types {
		for _, target := range targets {
			value := typ + ":" + target
			t.Run(fmt.Sprintf("ok_%s", value), func(t *testing.T) {
				got, err := ParseReference("k", withAnnotations(map[string]string{"k": value}))
				require.NoError(t, err, "parse should succeed")
				assert.Equal(t, Reference{Type: Type(typ), Target: target}, got, "halves should round-trip")
				assert.Equal(t, value, got.String(), "string should render the original value")
			})
		}
	}

	for _, value := range []string{"github", "https//nocolon", "dir.", "x"} {
		t.Run(fmt.Sprintf("no_colon_%s", value), func(t *testing.T) {
			_, err := ParseReference("k", withAnnotations(map[string]string{"k": value}))
			assert.ErrorIs(t, err, reading.ErrInput, "missing colon should be an input error")
		})
	}
}

func TestForEntity(t *testing.T) {
	managed := "url:https://github.com/a/b/blob/main/catalog-info.yaml"

	tests := []struct {
		name        string
		annotations map[string]string
		want        Reference
		errContains string
	}{
		{
			name:        "github_passthrough",
			annotations: map[string]string{entity.AnnotationTechDocsRef: "github:https://github.com/a/b"},
			want:        Reference{Type: TypeGitHub, Target: "https://github.com/a/b"},
		},
		{
			name:        "url_passthrough",
			annotations: map[string]string{entity.AnnotationTechDocsRef: "url:https://example.com/docs"},
			want:        Reference{Type: TypeURL, Target: "https://example.com/docs"},
		},
		{
			name:        "absolute_dir",
			annotations: map[string]string{entity.AnnotationTechDocsRef: "dir:/srv/docs"},
			want:        Reference{Type: TypeDir, Target: "/srv/docs"},
		},
		{
			name: "relative_dir_uses_managed_by_location",
			annotations: map[string]string{
				entity.AnnotationTechDocsRef:       "dir:.",
				entity.AnnotationManagedByLocation: managed,
			},
			want: Reference{Type: TypeURL, Target: "https://github.com/a/b/blob/main/catalog-info.yaml"},
		},
		{
			name:        "relative_dir_without_managed_by_location",
			annotations: map[string]string{entity.AnnotationTechDocsRef: "dir:./docs"},
			errContains: "no location annotation",
		},
		{
			name:        "file_is_not_a_docs_source",
			annotations: map[string]string{entity.AnnotationTechDocsRef: "file:/srv/docs"},
			errContains: "invalid reference annotation file",
		},
		{
			name:        "missing",
			annotations: nil,
			errContains: "no location annotation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForEntity(withAnnotations(tt.annotations))
			if tt.errContains != "" {
				require.Error(t, err, "resolve should fail")
				assert.ErrorIs(t, err, reading.ErrInput, "failure should be an input error")
				assert.Contains(t, err.Error(), tt.errContains, "error should explain")
				return
			}
			require.NoError(t, err, "resolve should succeed")
			assert.Equal(t, tt.want, got, "reference should match")
		})
	}
}

func TestTypeHelpers(t *testing.T) {
	assert.True(t, TypeAzureAPI.Known(), "azure is known")
	assert.False(t, Type("svn").Known(), "svn is unknown")
	assert.True(t, TypeGitLab.IsGit(), "gitlab is git")
	assert.False(t, TypeURL.IsGit(), "url is not git")
}

func ptr(s string) *string { return &s }
