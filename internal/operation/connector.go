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

package operation

import (
	"context"
)

// Connector represents a configured external integration.
// Each connector can execute multiple named operations.
type Connector interface {
	// Name returns the connector identifier
	Name() string

	// Execute runs a named operation with the given inputs
	Execute(ctx context.Context, operation string, inputs map[string]interface{}) (*Result, error)
}

// Result represents the output of a connector operation.
type Result struct {
	// Response is the shaped response data (one output record)
	Response map[string]interface{}

	// RawResponse is the decoded service payload before shaping (for debugging)
	RawResponse interface{}

	// StatusCode is the HTTP status code of the last request, if any
	StatusCode int

	// Metadata contains execution metadata (request ID, page count, etc.)
	Metadata map[string]interface{}
}

// GetResponse returns the shaped response data.
func (r *Result) GetResponse() map[string]interface{} {
	return r.Response
}

// GetMetadata returns execution metadata.
func (r *Result) GetMetadata() map[string]interface{} {
	return r.Metadata
}
