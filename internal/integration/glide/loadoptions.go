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
	"strings"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

// Option loader methods.
const (
	MethodGetApps                 = "getApps"
	MethodGetTables               = "getTables"
	MethodGetRows                 = "getRows"
	MethodGetColumns              = "getColumns"
	MethodGetRowsWithConfirmation = "getRowsWithConfirmation"
)

// LoadOptionsMethods lists the supported loader methods in display order.
func LoadOptionsMethods() []string {
	return []string{
		MethodGetApps,
		MethodGetTables,
		MethodGetRows,
		MethodGetColumns,
		MethodGetRowsWithConfirmation,
	}
}

// LoadOptions populates a dropdown. It never fails: errors are returned as
// a single "Error: ..." option. Method names may carry a "Dropdown"
// suffix.
func (g *Integration) LoadOptions(ctx context.Context, method string, inputs map[string]interface{}) []api.Option {
	method = strings.TrimSuffix(method, "Dropdown")
	p := params(inputs)

	var failed bool
	opts := SafeOptions(func() ([]api.Option, error) {
		opts, err := g.loadOptions(ctx, method, p)
		if err != nil {
			failed = true
			g.logger.Debug("option load failed", "method", method, "error", err)
		}
		return opts, err
	})
	operation.RecordOptionLoad(method, failed)
	return opts
}

func (g *Integration) loadOptions(ctx context.Context, method string, p params) ([]api.Option, error) {
	switch method {
	case MethodGetApps:
		return g.appOptions(ctx)
	case MethodGetTables:
		return g.tableOptions(ctx, p)
	case MethodGetRows:
		return g.rowOptions(ctx, p)
	case MethodGetColumns:
		return g.columnOptions(ctx, p)
	case MethodGetRowsWithConfirmation:
		return g.confirmedRowOptions(ctx, p)
	default:
		return nil, operation.NewNotImplementedError("Unknown options method '%s'", method)
	}
}

func (g *Integration) appOptions(ctx context.Context) ([]api.Option, error) {
	apps, err := g.svc.ListApps(ctx)
	if err != nil {
		return nil, err
	}
	return appOptions(apps), nil
}

func (g *Integration) tableOptions(ctx context.Context, p params) ([]api.Option, error) {
	client, err := g.client(p)
	if err != nil {
		return nil, err
	}
	tables, err := client.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return tableOptions(tables), nil
}

func (g *Integration) rowOptions(ctx context.Context, p params) ([]api.Option, error) {
	client, table, err := g.tableClient(p)
	if err != nil {
		return nil, err
	}
	limit, err := p.int(ParamRowLimit, 0)
	if err != nil {
		return nil, err
	}

	opts, err := client.ListRows(ctx, table, ClampRowLimit(limit))
	if err != nil {
		return nil, err
	}
	return FilterOptions(opts, p.string(ParamRowSearch)), nil
}

func (g *Integration) columnOptions(ctx context.Context, p params) ([]api.Option, error) {
	client, table, err := g.tableClient(p)
	if err != nil {
		return nil, err
	}

	cols, err := client.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	return columnOptions(FilterColumns(cols, p.strings(ParamColumnTypeFilter))), nil
}

func (g *Integration) confirmedRowOptions(ctx context.Context, p params) ([]api.Option, error) {
	if advisory, ok := ConfirmationGate(p.bool(ParamConfirmRowFetch)); !ok {
		return advisory, nil
	}

	client, table, err := g.tableClient(p)
	if err != nil {
		return nil, err
	}
	limit, err := p.int(ParamRowLimit, 0)
	if err != nil {
		return nil, err
	}
	return client.RowsWithConfirmation(ctx, table, ClampRowLimit(limit), true)
}

func (g *Integration) client(p params) (*Client, error) {
	return NewClient(g.svc, p.string(ParamAppID), g.logger)
}

func (g *Integration) tableClient(p params) (*Client, string, error) {
	client, err := g.client(p)
	if err != nil {
		return nil, "", err
	}
	table, err := p.required(ParamTableName)
	if err != nil {
		return nil, "", err
	}
	return client, table, nil
}
