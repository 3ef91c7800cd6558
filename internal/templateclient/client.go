/*
Copyright 2022 The Kruise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package templateclient fetches Template definitions from the template
// registry HTTP service. It caches nothing stateful: every call is a fresh
// round trip, matching the immutable-for-one-reconcile contract in §3.
package templateclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
)

const defaultTimeout = 5 * time.Second

// Client talks to GET /templates and GET /templates/{name}.
type Client struct {
	base       string
	httpClient *http.Client
}

// New builds a Client against the registry's well-known port 8000 on host.
func New(host string) *Client {
	return newWithBase(fmt.Sprintf("http://%s:8000", host))
}

// newWithBase builds a Client against an arbitrary base URL, used in tests
// to point at an httptest server instead of the fixed :8000 port.
func newWithBase(base string) *Client {
	return &Client{base: base, httpClient: &http.Client{Timeout: defaultTimeout}}
}

// NewForTest builds a Client against an arbitrary base URL (typically an
// httptest server) for use by other packages' tests.
func NewForTest(base string) *Client {
	return newWithBase(base)
}

func (c *Client) baseURL() string {
	return c.base
}

// List fetches every Template known to the registry.
func (c *Client) List(ctx context.Context) ([]domain.Template, error) {
	url := c.baseURL() + "/templates"
	var out []domain.Template
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one Template by name.
func (c *Client) Get(ctx context.Context, name string) (domain.Template, error) {
	url := fmt.Sprintf("%s/templates/%s", c.baseURL(), name)
	var out domain.Template
	if err := c.getJSON(ctx, url, &out); err != nil {
		return domain.Template{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &epsilonerr.TemplateFetchError{URL: url, Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &epsilonerr.TemplateFetchError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &epsilonerr.TemplateFetchError{URL: url, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &epsilonerr.ParseError{Detail: "decode template response from " + url, Cause: err}
	}
	return nil
}
