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
	"github.com/tombee/conductor-glide/internal/credential"
	"github.com/tombee/conductor-glide/internal/node"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

const expressionHint = "Choose from the list, or specify an ID using an expression"

var (
	rowLimitMin = MinRowLimit
	rowLimitMax = MaxRowLimit
)

// Operations returns the node operations with their resource.
func (g *Integration) Operations() []api.OperationInfo {
	return []api.OperationInfo{
		{Name: OpTableGetAll, Resource: ResourceTable, Description: "List many tables", Tags: []string{"read"}},
		{Name: OpTableCreate, Resource: ResourceTable, Description: "Create a new table", Tags: []string{"write", "unimplemented"}},
		{Name: OpTableDelete, Resource: ResourceTable, Description: "Delete a table", Tags: []string{"write", "destructive", "unimplemented"}},
		{Name: OpRowCreate, Resource: ResourceRow, Description: "Add a new row", Tags: []string{"write"}},
		{Name: OpRowDelete, Resource: ResourceRow, Description: "Delete a row", Tags: []string{"write", "destructive"}},
		{Name: OpRowGet, Resource: ResourceRow, Description: "Get a single row", Tags: []string{"read"}},
		{Name: OpRowGetAll, Resource: ResourceRow, Description: "Get all rows", Tags: []string{"read", "paginated"}},
		{Name: OpRowUpdate, Resource: ResourceRow, Description: "Update a row", Tags: []string{"write"}},
	}
}

// OperationSchema returns the parameters of an operation, or nil if the
// operation does not exist.
func (g *Integration) OperationSchema(op string) *api.OperationSchema {
	var info *api.OperationInfo
	for _, o := range g.Operations() {
		if o.Name == op {
			info = &o
			break
		}
	}
	if info == nil {
		return nil
	}

	schema := &api.OperationSchema{Description: info.Description}
	for _, prop := range Description().Properties {
		if prop.Name == ParamResource || prop.Name == ParamOperation || prop.Type == node.PropertyNotice {
			continue
		}
		if !prop.VisibleFor(info.Resource, op) {
			continue
		}
		schema.Parameters = append(schema.Parameters, api.ParameterInfo{
			Name:              prop.Name,
			Type:              string(prop.Type),
			Description:       prop.Description,
			Required:          prop.Required,
			Default:           prop.Default,
			LoadOptionsMethod: prop.LoadOptionsMethod,
		})
	}
	schema.ResponseFields = responseFields(op)
	return schema
}

func responseFields(op string) []api.ResponseFieldInfo {
	switch op {
	case OpTableGetAll:
		return []api.ResponseFieldInfo{{Name: "tables", Type: "array", Description: "Tables as {name, id}"}}
	case OpRowGetAll:
		return []api.ResponseFieldInfo{{Name: "rows", Type: "array", Description: "Rows in fetch order"}}
	case OpRowGet:
		return []api.ResponseFieldInfo{{Name: RowIDKey, Type: "string", Description: "Row identifier; empty object when the row is absent"}}
	case OpRowCreate, OpRowUpdate, OpRowDelete:
		return []api.ResponseFieldInfo{{Name: "rowID", Type: "string", Description: "Identifier reported by the mutate endpoint"}}
	default:
		return nil
	}
}

// Description returns the node type definition.
func Description() node.Description {
	rowOps := []string{OpRowGet, OpRowUpdate, OpRowDelete}

	return node.Description{
		DisplayName: "Glide Apps",
		Name:        Name,
		Version:     1,
		Description: "Interact with Glide Apps API",
		Credentials: []string{credential.GlideName},
		BaseURL:     DefaultBaseURL,
		Properties: []node.Property{
			{
				DisplayName: "Usage Tips",
				Name:        "usageTips",
				Type:        node.PropertyNotice,
				Default:     "",
				Description: "Use Row Limit and Row Search to avoid loading too much data. Enable Confirm Row Fetch for large tables. Use Column Type Filter to show only certain column types.",
			},
			{
				DisplayName: "Resource",
				Name:        ParamResource,
				Type:        node.PropertyOptions,
				Default:     ResourceTable,
				Required:    true,
				Options: []api.Option{
					{Name: "Table", Value: ResourceTable},
					{Name: "Row", Value: ResourceRow},
				},
			},
			{
				DisplayName: "Operation",
				Name:        ParamOperation,
				Type:        node.PropertyOptions,
				Default:     OpTableGetAll,
				Required:    true,
				Options: []api.Option{
					{Name: "Get Many", Value: OpTableGetAll},
					{Name: "Create", Value: OpTableCreate},
					{Name: "Delete", Value: OpTableDelete},
					{Name: "Add", Value: OpRowCreate},
					{Name: "Remove", Value: OpRowDelete},
					{Name: "Get", Value: OpRowGet},
					{Name: "Get All", Value: OpRowGetAll},
					{Name: "Update", Value: OpRowUpdate},
				},
			},
			{
				DisplayName:       "App Name or ID",
				Name:              ParamAppID,
				Type:              node.PropertyOptions,
				Default:           "",
				Required:          true,
				LoadOptionsMethod: MethodGetApps,
				Description:       expressionHint,
				Show:              map[string][]string{"resource": {ResourceTable, ResourceRow}},
			},
			{
				DisplayName:       "Table Name or ID",
				Name:              ParamTableName,
				Type:              node.PropertyOptions,
				Default:           "",
				Required:          true,
				LoadOptionsMethod: MethodGetTables,
				DependsOn:         []string{ParamAppID},
				Description:       expressionHint,
				Show:              map[string][]string{"resource": {ResourceRow}},
			},
			{
				DisplayName:       "Row Name or ID",
				Name:              ParamRowID,
				Type:              node.PropertyOptions,
				Default:           "",
				Required:          true,
				LoadOptionsMethod: MethodGetRows,
				DependsOn:         []string{ParamAppID, ParamTableName, ParamRowSearch, ParamRowLimit},
				Description:       expressionHint,
				Show:              map[string][]string{"resource": {ResourceRow}, "operation": rowOps},
			},
			{
				DisplayName: "Row Data",
				Name:        ParamRowData,
				Type:        node.PropertyJSON,
				Default:     "{}",
				Required:    true,
				Description: "Row data as JSON object with column names as keys",
				Show:        map[string][]string{"resource": {ResourceRow}, "operation": {OpRowCreate, OpRowUpdate}},
			},
			{
				DisplayName: "Row Search",
				Name:        ParamRowSearch,
				Type:        node.PropertyString,
				Default:     "",
				Description: "Filter rows by text in the row dropdown",
				Show:        map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGetAll}},
			},
			{
				DisplayName: "Row Limit",
				Name:        ParamRowLimit,
				Type:        node.PropertyNumber,
				Default:     DefaultRowLimit,
				MinValue:    &rowLimitMin,
				MaxValue:    &rowLimitMax,
				Description: "Maximum number of rows to fetch for dropdowns; page size for Get All",
				Show:        map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGetAll}},
			},
			{
				DisplayName: "Confirm Row Fetch",
				Name:        ParamConfirmRowFetch,
				Type:        node.PropertyBoolean,
				Default:     false,
				Description: "Whether to enable fetching rows for preview or selection if the table is large",
				Show:        map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGetAll}},
			},
			{
				DisplayName:       "Column Name or ID",
				Name:              "columnName",
				Type:              node.PropertyOptions,
				Default:           "",
				LoadOptionsMethod: MethodGetColumns,
				DependsOn:         []string{ParamAppID, ParamTableName, ParamColumnTypeFilter},
				Description:       expressionHint,
				Show:              map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGet, OpRowUpdate}},
			},
			{
				DisplayName: "Column Type Filter",
				Name:        ParamColumnTypeFilter,
				Type:        node.PropertyMultiOptions,
				Default:     []string{},
				Options: []api.Option{
					{Name: "Boolean", Value: string(ColumnTypeBoolean)},
					{Name: "Date", Value: string(ColumnTypeDate)},
					{Name: "Number", Value: string(ColumnTypeNumber)},
					{Name: "Other", Value: string(ColumnTypeOther)},
					{Name: "Text", Value: string(ColumnTypeText)},
				},
				Description: "Filter columns by type for the dropdown",
				Show:        map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGet, OpRowUpdate}},
			},
			{
				DisplayName:       "Row Name or ID",
				Name:              "rowPreview",
				Type:              node.PropertyOptions,
				Default:           "",
				LoadOptionsMethod: MethodGetRowsWithConfirmation,
				DependsOn:         []string{ParamAppID, ParamTableName, ParamConfirmRowFetch, ParamRowLimit},
				Description:       expressionHint,
				Show:              map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGetAll}},
			},
			{
				DisplayName: "Row Fetch Warning",
				Name:        "rowFetchWarning",
				Type:        node.PropertyNotice,
				Default:     "",
				Description: RowFetchWarning(DefaultRowLimit),
				Show:        map[string][]string{"resource": {ResourceRow}, "operation": {OpRowGetAll}},
			},
			{
				DisplayName: "Response Transform",
				Name:        ParamResponseTransform,
				Type:        node.PropertyString,
				Default:     "",
				Description: "Optional jq expression applied to each output record",
			},
		},
	}
}
