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

package glide

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tombee/conductor-glide/internal/operation/api"
)

// TablesService is the remote table API. HTTPService is the production
// implementation; tests supply their own.
type TablesService interface {
	// ListApps returns the apps visible to the credential.
	ListApps(ctx context.Context) ([]App, error)

	// ListTables returns every table in an app.
	ListTables(ctx context.Context, appID string) ([]Table, error)

	// GetSchema returns a table's columns. It returns an error wrapping
	// ErrSchemaUnavailable when the service exposes no schema.
	GetSchema(ctx context.Context, appID, tableID string) (*Schema, error)

	// QueryTable fetches one page of rows.
	QueryTable(ctx context.Context, appID string, q Query) (*QueryResult, error)

	// QuerySQL runs a SQL query and returns one page of rows.
	QuerySQL(ctx context.Context, appID string, q SQLQuery) (*QueryResult, error)

	// MutateTables applies mutations in order and returns one result each.
	MutateTables(ctx context.Context, appID string, mutations []Mutation) ([]MutationResult, error)
}

// HTTPService talks to the Glide tables REST API. Authentication is
// injected by the configured transport.
type HTTPService struct {
	*api.BaseProvider
}

// NewHTTPService creates a service client. An empty base URL defaults to
// the public Glide API host.
func NewHTTPService(config *api.ProviderConfig) (*HTTPService, error) {
	if config == nil || config.Transport == nil {
		return nil, fmt.Errorf("glide: transport is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &HTTPService{
		BaseProvider: api.NewBaseProvider("glide", config),
	}, nil
}

// DefaultBaseURL is the public Glide API host.
const DefaultBaseURL = "https://api.glideapps.com"

// ListApps implements TablesService.
func (s *HTTPService) ListApps(ctx context.Context) ([]App, error) {
	url, err := s.BuildURL("/apps", nil)
	if err != nil {
		return nil, err
	}

	var out listResponse[App]
	if err := s.do(ctx, "listApps", http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListTables implements TablesService.
func (s *HTTPService) ListTables(ctx context.Context, appID string) ([]Table, error) {
	url, err := s.BuildURL("/apps/{appID}/tables", map[string]string{"appID": appID})
	if err != nil {
		return nil, err
	}

	var out listResponse[Table]
	if err := s.do(ctx, "listTables", http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetSchema implements TablesService.
func (s *HTTPService) GetSchema(ctx context.Context, appID, tableID string) (*Schema, error) {
	url, err := s.BuildURL("/apps/{appID}/tables/{tableID}/schema", map[string]string{
		"appID":   appID,
		"tableID": tableID,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.ExecuteRequest(ctx, "getSchema", http.MethodGet, url, nil)
	if err != nil {
		if isSchemaUnsupported(err) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, translateError(err).Error())
		}
		return nil, translateError(err)
	}

	var out schemaResponse
	if err := s.ParseJSONResponse(resp, &out); err != nil {
		return nil, ErrInvalidSchema
	}
	if out.Data == nil || out.Data.Columns == nil {
		return nil, ErrInvalidSchema
	}
	return out.Data, nil
}

// QueryTable implements TablesService.
func (s *HTTPService) QueryTable(ctx context.Context, appID string, q Query) (*QueryResult, error) {
	return s.query(ctx, "queryTable", appID, q)
}

// QuerySQL implements TablesService.
func (s *HTTPService) QuerySQL(ctx context.Context, appID string, q SQLQuery) (*QueryResult, error) {
	return s.query(ctx, "querySQL", appID, q)
}

func (s *HTTPService) query(ctx context.Context, op, appID string, q interface{}) (*QueryResult, error) {
	url, err := s.BuildURL("/apps/{appID}/tables/query", map[string]string{"appID": appID})
	if err != nil {
		return nil, err
	}

	var out []QueryResult
	if err := s.do(ctx, op, http.MethodPost, url, queryRequest{Queries: []interface{}{q}}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return &QueryResult{}, nil
	}
	return &out[0], nil
}

// MutateTables implements TablesService.
func (s *HTTPService) MutateTables(ctx context.Context, appID string, mutations []Mutation) ([]MutationResult, error) {
	url, err := s.BuildURL("/apps/{appID}/tables/mutate", map[string]string{"appID": appID})
	if err != nil {
		return nil, err
	}

	var out []MutationResult
	if err := s.do(ctx, "mutateTables", http.MethodPost, url, mutateRequest{Mutations: mutations}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends a request and decodes a JSON response into target.
func (s *HTTPService) do(ctx context.Context, op, method, url string, body, target interface{}) error {
	resp, err := s.ExecuteRequest(ctx, op, method, url, body)
	if err != nil {
		return translateError(err)
	}
	if err := s.ParseJSONResponse(resp, target); err != nil {
		return wrapUpstream("decode "+op+" response", err)
	}
	return nil
}
