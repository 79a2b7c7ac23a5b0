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

// Package api provides common types and utilities for API integrations.
package api

import (
	"context"
	"log/slog"

	"github.com/tombee/conductor-glide/internal/operation/transport"
)

// ProviderConfig holds configuration for API integrations.
type ProviderConfig struct {
	// Transport is the HTTP transport for making requests. Authentication is
	// applied by the transport, never by the provider.
	Transport transport.Transport

	// BaseURL is the API base URL
	BaseURL string

	// Logger receives integration logs. Nil means slog.Default().
	Logger *slog.Logger
}

// OperationInfo provides metadata about an integration operation.
type OperationInfo struct {
	// Name is the operation identifier (e.g., "rowCreate")
	Name string `json:"name"`

	// Resource is the resource the operation acts on ("table" or "row")
	Resource string `json:"resource"`

	// Description is a human-readable description
	Description string `json:"description"`

	// Tags classify operations (e.g., "write", "paginated", "destructive")
	Tags []string `json:"tags,omitempty"`
}

// OperationSchema describes an operation's inputs and outputs.
type OperationSchema struct {
	// Description is a human-readable description
	Description string `json:"description"`

	// Parameters describes the operation inputs
	Parameters []ParameterInfo `json:"parameters"`

	// ResponseFields describes the response structure
	ResponseFields []ResponseFieldInfo `json:"responseFields,omitempty"`
}

// ParameterInfo describes an operation parameter.
type ParameterInfo struct {
	// Name is the parameter identifier
	Name string `json:"name"`

	// Type is the parameter type (string, integer, boolean, json, options)
	Type string `json:"type"`

	// Description is a human-readable description
	Description string `json:"description,omitempty"`

	// Required indicates if the parameter is required
	Required bool `json:"required"`

	// Default is the default value (nil if no default)
	Default interface{} `json:"default,omitempty"`

	// LoadOptionsMethod names the option loader that populates the field
	LoadOptionsMethod string `json:"loadOptionsMethod,omitempty"`
}

// ResponseFieldInfo describes a response field.
type ResponseFieldInfo struct {
	// Name is the field identifier
	Name string `json:"name"`

	// Type is the field type (string, integer, boolean, array, object)
	Type string `json:"type"`

	// Description is a human-readable description
	Description string `json:"description,omitempty"`
}

// Option is a single entry in a dropdown list shown to the workflow author.
type Option struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// TypedProvider extends the base Connector interface with operation metadata.
type TypedProvider interface {
	// Operations returns the list of available operations with metadata.
	Operations() []OperationInfo

	// OperationSchema returns the operation description and parameter information.
	// Returns nil if the operation doesn't exist.
	OperationSchema(operation string) *OperationSchema
}

// OptionLoader is implemented by integrations that populate dropdowns.
// Implementations never return an error; failures become a single
// error option.
type OptionLoader interface {
	LoadOptions(ctx context.Context, method string, params map[string]interface{}) []Option
}
