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

	"github.com/tombee/conductor-glide/internal/operation"
)

// Operation names.
const (
	OpTableGetAll = "tableGetAll"
	OpTableCreate = "tableCreate"
	OpTableDelete = "tableDelete"
	OpRowCreate   = "rowCreate"
	OpRowUpdate   = "rowUpdate"
	OpRowDelete   = "rowDelete"
	OpRowGet      = "rowGet"
	OpRowGetAll   = "rowGetAll"
)

// DefaultRowGetAllLimit is the page size rowGetAll uses when rowLimit is
// not set.
const DefaultRowGetAllLimit = 100

func (g *Integration) dispatch(ctx context.Context, resource, op string, p params) (*operation.Result, error) {
	appID, err := p.required(ParamAppID)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(g.svc, appID, g.logger)
	if err != nil {
		return nil, err
	}

	switch resource {
	case ResourceTable:
		return g.executeTable(ctx, client, op)
	case ResourceRow:
		return g.executeRow(ctx, client, op, p)
	default:
		return nil, operation.NewNotImplementedError("Resource '%s' is not supported", resource)
	}
}

func (g *Integration) executeTable(ctx context.Context, client *Client, op string) (*operation.Result, error) {
	switch op {
	case OpTableGetAll:
		return g.tableGetAll(ctx, client)
	default:
		// tableCreate and tableDelete are declared but have no handler.
		return nil, operation.NewNotImplementedError("Table operation '%s' is not yet implemented", op)
	}
}

func (g *Integration) executeRow(ctx context.Context, client *Client, op string, p params) (*operation.Result, error) {
	switch op {
	case OpRowCreate, OpRowUpdate, OpRowDelete, OpRowGet, OpRowGetAll:
	default:
		return nil, operation.NewNotImplementedError("Row operation '%s' is not supported", op)
	}

	table, err := p.required(ParamTableName)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpRowCreate:
		return g.rowCreate(ctx, client, table, p)
	case OpRowUpdate:
		return g.rowUpdate(ctx, client, table, p)
	case OpRowDelete:
		return g.rowDelete(ctx, client, table, p)
	case OpRowGet:
		return g.rowGet(ctx, client, table, p)
	default:
		return g.rowGetAll(ctx, client, table, p)
	}
}

func (g *Integration) tableGetAll(ctx context.Context, client *Client) (*operation.Result, error) {
	tables, err := client.Tables(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(tables))
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = "Unknown"
		}
		out = append(out, map[string]interface{}{"name": name, "id": t.ID})
	}

	return &operation.Result{
		Response:    map[string]interface{}{"tables": out},
		RawResponse: tables,
		Metadata:    map[string]interface{}{"count": len(tables)},
	}, nil
}

func (g *Integration) rowCreate(ctx context.Context, client *Client, table string, p params) (*operation.Result, error) {
	values, err := p.rowData()
	if err != nil {
		return nil, err
	}

	results, err := client.AddRow(ctx, table, values)
	if err != nil {
		return nil, err
	}
	return mutationResult("add row", results)
}

func (g *Integration) rowUpdate(ctx context.Context, client *Client, table string, p params) (*operation.Result, error) {
	rowID, err := p.required(ParamRowID)
	if err != nil {
		return nil, err
	}
	values, err := p.rowData()
	if err != nil {
		return nil, err
	}

	results, err := client.SetColumnsInRow(ctx, table, RowByID(rowID), values)
	if err != nil {
		return nil, err
	}
	return mutationResult("set columns", results)
}

func (g *Integration) rowDelete(ctx context.Context, client *Client, table string, p params) (*operation.Result, error) {
	rowID, err := p.required(ParamRowID)
	if err != nil {
		return nil, err
	}

	results, err := client.DeleteRow(ctx, table, RowByID(rowID))
	if err != nil {
		return nil, err
	}
	return mutationResult("delete row", results)
}

func (g *Integration) rowGet(ctx context.Context, client *Client, table string, p params) (*operation.Result, error) {
	rowID, err := p.required(ParamRowID)
	if err != nil {
		return nil, err
	}

	row, err := client.GetRowByID(ctx, table, rowID)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{}
	for k, v := range row {
		response[k] = v
	}
	return &operation.Result{
		Response:    response,
		RawResponse: row,
		Metadata:    map[string]interface{}{"found": row != nil},
	}, nil
}

func (g *Integration) rowGetAll(ctx context.Context, client *Client, table string, p params) (*operation.Result, error) {
	pageSize, err := p.int(ParamRowLimit, DefaultRowGetAllLimit)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultRowGetAllLimit
	}

	rows, err := client.AllRowsPaginated(ctx, table, pageSize, MaxPages)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]interface{}(row))
	}
	return &operation.Result{
		Response:    map[string]interface{}{"rows": out},
		RawResponse: rows,
		Metadata:    map[string]interface{}{"count": len(rows)},
	}, nil
}

// mutationResult turns the service's per-mutation results into one output
// record. Errors reported inside a result fail the item.
func mutationResult(action string, results []MutationResult) (*operation.Result, error) {
	if errs := ExtractMutationErrors(results); len(errs) > 0 {
		return nil, operation.NewUpstreamError("Failed to "+action+": "+joinErrors(errs), nil)
	}

	response := map[string]interface{}{}
	if len(results) > 0 && results[0] != nil {
		for k, v := range results[0] {
			response[k] = v
		}
	}
	return &operation.Result{
		Response:    response,
		RawResponse: results,
	}, nil
}
