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

package transport

import (
	"fmt"
	"net/http"
	"sort"
)

// Auth types understood by AuthConfig.
const (
	AuthTypeBearer  = "bearer"
	AuthTypeHeaders = "headers"
)

// AuthConfig configures HTTP authentication.
// Secret values are expected to be resolved already; the transport never
// logs or echoes them.
type AuthConfig struct {
	// Type is the authentication type ("bearer" or "headers")
	Type string

	// Token is the bearer token (type: bearer)
	Token string

	// Headers are set verbatim on every request (type: headers).
	// Used for schemes like "ShippoToken <token>" that are not plain bearer.
	Headers map[string]string
}

// Validate checks if the auth configuration is valid.
func (a *AuthConfig) Validate() error {
	switch a.Type {
	case AuthTypeBearer:
		if a.Token == "" {
			return fmt.Errorf("token is required for bearer auth")
		}

	case AuthTypeHeaders:
		if len(a.Headers) == 0 {
			return fmt.Errorf("at least one header is required for headers auth")
		}
		for name, value := range a.Headers {
			if name == "" || value == "" {
				return fmt.Errorf("header names and values must be non-empty")
			}
		}

	default:
		return fmt.Errorf("invalid auth type: %q (must be bearer or headers)", a.Type)
	}

	return nil
}

// Apply sets the authentication headers on an outgoing request.
func (a *AuthConfig) Apply(req *http.Request) error {
	switch a.Type {
	case AuthTypeBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)

	case AuthTypeHeaders:
		names := make([]string, 0, len(a.Headers))
		for name := range a.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			req.Header.Set(name, a.Headers[name])
		}

	default:
		return fmt.Errorf("unsupported auth type: %q", a.Type)
	}

	return nil
}
