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

package credential

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/transport"
)

// FieldType is the input widget a host renders for a credential field.
type FieldType string

const (
	FieldTypeOptions  FieldType = "options"
	FieldTypePassword FieldType = "password"
)

// FieldOption is one choice of an options field.
type FieldOption struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Field describes one value the host must collect.
type Field struct {
	Name        string        `json:"name" yaml:"name"`
	DisplayName string        `json:"displayName" yaml:"displayName"`
	Type        FieldType     `json:"type" yaml:"type"`
	Required    bool          `json:"required" yaml:"required"`
	Default     string        `json:"default" yaml:"default"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []FieldOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Probe is the lightweight request used to check a credential.
type Probe struct {
	Method string `json:"method" yaml:"method"`
	Path   string `json:"path" yaml:"path"`
}

// Descriptor is the static shape of a credential type.
type Descriptor struct {
	Name             string  `json:"name" yaml:"name"`
	DisplayName      string  `json:"displayName" yaml:"displayName"`
	DocumentationURL string  `json:"documentationUrl" yaml:"documentationUrl"`
	Fields           []Field `json:"fields" yaml:"fields"`
	Probe            Probe   `json:"probe" yaml:"probe"`

	baseURLs     map[Environment]string
	authenticate func(Credential) *transport.AuthConfig
	validate     func(Credential) error
}

// TransportOptions tunes the transport built for a credential.
type TransportOptions struct {
	// BaseURL overrides the environment's base URL
	BaseURL string

	// Timeout is the HTTP client timeout; zero means no client-side timeout
	Timeout time.Duration

	// RateLimit caps requests per second; zero disables limiting
	RateLimit float64

	Logger *slog.Logger
}

// BaseURL returns the base URL for the credential's environment.
func (d *Descriptor) BaseURL(cred Credential) string {
	if u, ok := d.baseURLs[cred.Environment()]; ok {
		return u
	}
	return d.baseURLs[EnvironmentTest]
}

// BaseURLs returns a copy of the environment to base URL map.
func (d *Descriptor) BaseURLs() map[Environment]string {
	out := make(map[Environment]string, len(d.baseURLs))
	for k, v := range d.baseURLs {
		out[k] = v
	}
	return out
}

// WithBaseURLs returns a copy of the descriptor with the given environments
// pointed at different hosts. Empty values are ignored.
func (d *Descriptor) WithBaseURLs(overrides map[Environment]string) *Descriptor {
	cp := *d
	cp.baseURLs = d.BaseURLs()
	for env, u := range overrides {
		if u != "" {
			cp.baseURLs[env] = strings.TrimRight(u, "/")
		}
	}
	return &cp
}

// Validate checks the credential against the descriptor's rules.
func (d *Descriptor) Validate(cred Credential) error {
	if strings.TrimSpace(cred.Secret()) == "" {
		return operation.NewValidationError("apiToken is required")
	}
	if _, ok := d.baseURLs[cred.Environment()]; !ok {
		return operation.NewValidationError("environment %q is not supported by %s", cred.Environment(), d.Name)
	}
	if d.validate != nil {
		return d.validate(cred)
	}
	return nil
}

// AuthConfig returns the auth rule applied to every outgoing request.
func (d *Descriptor) AuthConfig(cred Credential) (*transport.AuthConfig, error) {
	if err := d.Validate(cred); err != nil {
		return nil, err
	}
	return d.authenticate(cred), nil
}

// NewTransport builds an HTTP transport that injects the credential.
func (d *Descriptor) NewTransport(cred Credential, opts TransportOptions) (*transport.HTTPTransport, error) {
	auth, err := d.AuthConfig(cred)
	if err != nil {
		return nil, err
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = d.BaseURL(cred)
	}

	tr, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{
		BaseURL: baseURL,
		Timeout: opts.Timeout,
		Auth:    auth,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for %s: %w", d.Name, err)
	}

	if limiter := transport.NewTokenBucketLimiter(opts.RateLimit, 1); limiter != nil {
		tr.SetRateLimiter(limiter)
	}

	return tr, nil
}

// Test sends the liveness probe through tr. The probe targets the
// transport's own base URL when it has one, else the credential's
// environment host. Any failure is returned as an error carrying the
// service's message.
func (d *Descriptor) Test(ctx context.Context, tr transport.Transport, cred Credential) error {
	if err := d.Validate(cred); err != nil {
		return err
	}

	baseURL := d.BaseURL(cred)
	if b, ok := tr.(interface{ BaseURL() string }); ok && b.BaseURL() != "" {
		baseURL = b.BaseURL()
	}

	method := d.Probe.Method
	if method == "" {
		method = http.MethodGet
	}

	req := &transport.Request{
		Method: method,
		URL:    strings.TrimRight(baseURL, "/") + d.Probe.Path,
		Metadata: map[string]interface{}{
			transport.MetadataOperation: "credentialTest",
		},
	}

	resp, err := tr.Execute(ctx, req)
	if err != nil {
		if te, ok := transport.AsTransportError(err); ok {
			return &operation.Error{
				Type:       operation.ClassifyHTTPStatus(te.StatusCode),
				Message:    fmt.Sprintf("%s credential test failed: %s", d.DisplayName, te.Message),
				StatusCode: te.StatusCode,
				RequestID:  te.RequestID,
				Cause:      err,
			}
		}
		return operation.NewUpstreamError(fmt.Sprintf("%s credential test failed: %v", d.DisplayName, err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return operation.NewUpstreamError(fmt.Sprintf("%s credential test failed: HTTP %d", d.DisplayName, resp.StatusCode), nil)
	}
	return nil
}

var descriptors = map[string]func() *Descriptor{}

func register(alias string, fn func() *Descriptor) {
	descriptors[alias] = fn
	descriptors[fn().Name] = fn
}

// Lookup returns a descriptor by credential name or short alias
// (e.g. "glide" or "glideappsApi").
func Lookup(name string) (*Descriptor, error) {
	if fn, ok := descriptors[name]; ok {
		return fn(), nil
	}
	return nil, operation.NewValidationError("unknown credential type %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the short aliases of all known credential types.
func Names() []string {
	seen := map[string]bool{}
	var names []string
	for alias, fn := range descriptors {
		if alias == fn().Name || seen[alias] {
			continue
		}
		seen[alias] = true
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}
