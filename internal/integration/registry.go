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

// Package integration holds the built-in API integrations.
package integration

import (
	"fmt"
	"sort"

	"github.com/tombee/conductor-glide/internal/integration/glide"
	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

// Factory creates a connector from provider configuration.
type Factory func(config *api.ProviderConfig) (operation.Connector, error)

// BuiltinRegistry holds all built-in API integration factories.
var BuiltinRegistry = map[string]Factory{
	glide.Name: glide.NewGlideIntegration,
}

// Names returns the built-in integration names, sorted.
func Names() []string {
	names := make([]string, 0, len(BuiltinRegistry))
	for name := range BuiltinRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named built-in integration.
func New(name string, config *api.ProviderConfig) (operation.Connector, error) {
	factory, ok := BuiltinRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integration %q", name)
	}
	c, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s integration: %w", name, err)
	}
	return c, nil
}
