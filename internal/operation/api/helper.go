// Copyright 2025 Tom Barlow
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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/transport"
)

// BaseProvider provides common functionality for API integrations.
type BaseProvider struct {
	name      string
	transport transport.Transport
	baseURL   string
}

// NewBaseProvider creates a new base provider.
func NewBaseProvider(name string, config *ProviderConfig) *BaseProvider {
	return &BaseProvider{
		name:      name,
		transport: config.Transport,
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
	}
}

// Name returns the integration identifier.
func (c *BaseProvider) Name() string {
	return c.name
}

// BaseURL returns the API base URL without a trailing slash.
func (c *BaseProvider) BaseURL() string {
	return c.baseURL
}

// BuildURL constructs a full URL from a path template and path parameters.
// Path templates use {param} syntax (e.g., "/apps/{appID}/tables").
// Parameter values are path-escaped.
func (c *BaseProvider) BuildURL(pathTemplate string, params map[string]string) (string, error) {
	path := pathTemplate

	for key, value := range params {
		placeholder := "{" + key + "}"
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
		}
	}

	if start := strings.Index(path, "{"); start >= 0 {
		if end := strings.Index(path[start:], "}"); end > 0 {
			return "", operation.NewValidationError("missing required parameter: %s", path[start+1:start+end])
		}
	}

	return c.baseURL + path, nil
}

// BuildQueryString constructs a query string from non-empty values, in
// key order.
func (c *BaseProvider) BuildQueryString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, params[k])
	}
	return "?" + values.Encode()
}

// ExecuteRequest sends a request, encoding body as JSON when it is not nil.
// The operation name is attached to the request for metrics.
func (c *BaseProvider) ExecuteRequest(ctx context.Context, op, method, url string, body interface{}) (*transport.Response, error) {
	var payload []byte
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.TrimRight(buf.Bytes(), "\n")
	}

	req := &transport.Request{
		Method: method,
		URL:    url,
		Body:   payload,
		Metadata: map[string]interface{}{
			transport.MetadataOperation: op,
		},
	}

	return c.transport.Execute(ctx, req)
}

// ParseJSONResponse parses a JSON response into a target value.
func (c *BaseProvider) ParseJSONResponse(resp *transport.Response, target interface{}) error {
	if resp == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ToResult converts a transport response and shaped output into an
// operation result.
func (c *BaseProvider) ToResult(resp *transport.Response, response map[string]interface{}, raw interface{}) *operation.Result {
	result := &operation.Result{
		Response:    response,
		RawResponse: raw,
		Metadata:    map[string]interface{}{},
	}
	if resp != nil {
		result.StatusCode = resp.StatusCode
		for k, v := range resp.Metadata {
			result.Metadata[k] = v
		}
	}
	return result
}

// ValidateRequired checks that all required parameters are present and
// non-empty in inputs.
func (c *BaseProvider) ValidateRequired(inputs map[string]interface{}, required []string) error {
	for _, param := range required {
		v, ok := inputs[param]
		if !ok || v == nil {
			return operation.NewValidationError("%s is required", param)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return operation.NewValidationError("%s is required", param)
		}
	}
	return nil
}
