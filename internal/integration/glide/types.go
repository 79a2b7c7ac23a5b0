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
	"encoding/json"
	"fmt"
	"strings"
)

// App is a Glide app visible to the token.
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is a Glide table. Users pick tables by name; the service addresses
// them by ID.
type Table struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ColumnType is the normalized kind of a column: boolean, date, number,
// text or other.
type ColumnType string

const (
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeText    ColumnType = "text"
	ColumnTypeOther   ColumnType = "other"
)

// UnmarshalJSON accepts either a bare type name or an object with a
// "kind" field, and folds the service's type names onto ColumnType.
func (t *ColumnType) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var kind string
	switch v := raw.(type) {
	case nil:
	case string:
		kind = v
	case map[string]interface{}:
		if k, ok := v["kind"].(string); ok {
			kind = k
		}
	default:
		return fmt.Errorf("unsupported column type %s", string(data))
	}

	*t = normalizeColumnType(kind)
	return nil
}

func normalizeColumnType(kind string) ColumnType {
	switch strings.ToLower(kind) {
	case "":
		return ""
	case "boolean", "bool":
		return ColumnTypeBoolean
	case "date", "date-time", "datetime":
		return ColumnTypeDate
	case "number":
		return ColumnTypeNumber
	case "string", "text", "uri", "image-uri", "email", "phone-number", "emoji":
		return ColumnTypeText
	default:
		return ColumnTypeOther
	}
}

// Column is one column of a table schema.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type,omitempty"`
}

// Schema is a table's column list.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Row is one table row keyed by column name. The row identifier is held
// under "$rowID".
type Row map[string]interface{}

// RowIDKey is the column holding a row's identifier.
const RowIDKey = "$rowID"

// ID returns the row identifier, or "" when the row has none.
func (r Row) ID() string {
	for _, key := range []string{RowIDKey, "id"} {
		if v, ok := r[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// Query requests one page of a table.
type Query struct {
	TableName string `json:"tableName"`
	StartAt   string `json:"startAt,omitempty"`
}

// SQLQuery runs SQL against an app's Big Tables.
type SQLQuery struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params,omitempty"`
}

// QueryResult is one page of rows. Next is empty on the last page.
type QueryResult struct {
	Rows []Row  `json:"rows"`
	Next string `json:"next,omitempty"`
}

// MutationKind names a table mutation.
type MutationKind string

const (
	MutationAddRow     MutationKind = "add-row-to-table"
	MutationSetColumns MutationKind = "set-columns-in-row"
	MutationDeleteRow  MutationKind = "delete-row"
)

// RowRef addresses a row by ID or by index. ID wins when both are set.
type RowRef struct {
	ID    string
	Index *int
}

// RowByID returns a reference to the row with the given identifier.
func RowByID(id string) RowRef {
	return RowRef{ID: id}
}

// Mutation is a single change sent to the mutate endpoint. It is built per
// call and sent once.
type Mutation struct {
	Kind         MutationKind           `json:"kind"`
	TableName    string                 `json:"tableName"`
	RowID        string                 `json:"rowID,omitempty"`
	RowIndex     *int                   `json:"rowIndex,omitempty"`
	ColumnValues map[string]interface{} `json:"columnValues,omitempty"`
}

// newMutation builds a mutation, applying ref with ID taking precedence
// over index.
func newMutation(kind MutationKind, table string, ref RowRef, values map[string]interface{}) Mutation {
	m := Mutation{
		Kind:         kind,
		TableName:    table,
		ColumnValues: values,
	}
	switch {
	case ref.ID != "":
		m.RowID = ref.ID
	case ref.Index != nil:
		idx := *ref.Index
		m.RowIndex = &idx
	}
	return m
}

// MutationResult is the service's raw per-mutation response.
type MutationResult map[string]interface{}

// listResponse is the envelope of the apps and tables endpoints.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

// schemaResponse is the envelope of the schema endpoint.
type schemaResponse struct {
	Data *Schema `json:"data"`
}

type queryRequest struct {
	Queries []interface{} `json:"queries"`
}

type mutateRequest struct {
	Mutations []Mutation `json:"mutations"`
}

// errorResponse covers the error bodies the service returns.
type errorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}
