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
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🌐 NewHTTPClient returns a client whose transport gives up after timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// NetworkError is a request that never produced a response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("unable to read %s, %v", e.URL, e.Err)
}

// Unwrap exposes both ErrFetch and the cause, so context cancellation stays detectable.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// 📥 Get issues a GET for target on behalf of url and returns the body of a 2xx response.
// The caller closes the body.
func Get(ctx context.Context, client *http.Client, url, target string, header http.Header) (io.ReadCloser, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, inputErrorf("invalid request url %s: %s", target, err.Error())
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	logger.Debug().Str("url", url).Str("target", target).Msg("fetching")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.WithStack(&NetworkError{URL: url, Err: err})
	}

	if err := CheckResponse(url, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp.Body, nil
}

// CheckResponse maps non-2xx responses to *HTTPError.
func CheckResponse(url string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	target := ""
	if resp.Request != nil && resp.Request.URL != nil {
		target = resp.Request.URL.String()
	}
	return errors.WithStack(&HTTPError{
		URL:        url,
		Target:     target,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	})
}

// GetBytes is Get followed by a full read.
func GetBytes(ctx context.Context, client *http.Client, url, target string, header http.Header) ([]byte, error) {
	body, err := Get(ctx, client, url, target, header)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.WithStack(&NetworkError{URL: url, Err: err})
	}
	return data, nil
}
