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
	"fmt"
	"net/http"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInput is a caller mistake: a missing annotation, a malformed URL. Never retried.
	ErrInput = errors.Base("input error")
	// ErrNotFound means the remote answered 404.
	ErrNotFound = errors.Base("not found")
	// ErrFetch covers every other transport failure, including non-2xx responses.
	ErrFetch = errors.Base("fetch failed")
	// ErrNoReader means no registered reader matched the URL.
	ErrNoReader = errors.Base("no reader for url")
	// ErrUnsupported is returned by readers that cannot serve an operation.
	ErrUnsupported = errors.Base("operation not supported")
)

// 🚨 HTTPError is a non-2xx response.
type HTTPError struct {
	URL        string // what the caller asked for
	Target     string // what was actually requested
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s could not be read as %s, %d %s", e.URL, e.Target, e.StatusCode, statusText(e))
}

// Unwrap lets errors.Is distinguish ErrNotFound from ErrFetch.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrFetch
}

func statusText(e *HTTPError) string {
	if e.Status != "" {
		// net/http Status is "404 Not Found"
		if len(e.Status) > 4 && e.Status[3] == ' ' {
			return e.Status[4:]
		}
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

// IsNotFound reports whether err is, or wraps, a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func inputErrorf(format string, args ...any) error {
	return errors.Errorf("%w: "+format, append([]any{ErrInput}, args...)...)
}
