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

package reading

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// 🔍 Match reports whether rel is selected by filters. No filters selects everything.
// A plain filter selects the path itself and everything below it; a filter with glob
// characters is matched with doublestar against the path and against its directory subtree.
func Match(filters []string, rel string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		f = strings.Trim(strings.TrimPrefix(f, "./"), "/")
		if f == "" || f == "." {
			return true
		}
		if hasMeta(f) {
			if ok, _ := doublestar.Match(f, rel); ok {
				return true
			}
			if ok, _ := doublestar.Match(f+"/**", rel); ok {
				return true
			}
			continue
		}
		if rel == f || strings.HasPrefix(rel, f+"/") {
			return true
		}
	}
	return false
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
