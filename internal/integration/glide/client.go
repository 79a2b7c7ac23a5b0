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
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

const (
	// DefaultPageSize is the page size used when listing all rows.
	DefaultPageSize = 100

	// MaxPages caps how many pages AllRowsPaginated will fetch.
	MaxPages = 10

	// rowScanLimit bounds how many rows GetRowByID inspects.
	rowScanLimit = 1000
)

// Client runs table operations against one app.
type Client struct {
	svc    TablesService
	appID  string
	logger *slog.Logger
}

// NewClient binds a service to an app. The app ID is required.
func NewClient(svc TablesService, appID string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(appID) == "" {
		return nil, operation.NewValidationError("appId is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		svc:    svc,
		appID:  appID,
		logger: logger.With("app_id", appID),
	}, nil
}

// AppID returns the app the client is bound to.
func (c *Client) AppID() string {
	return c.appID
}

// ListApps returns the apps visible to the credential as options. It never
// fails; errors become a single error option.
func ListApps(ctx context.Context, svc TablesService) []api.Option {
	return SafeOptions(func() ([]api.Option, error) {
		apps, err := svc.ListApps(ctx)
		if err != nil {
			return nil, err
		}
		return appOptions(apps), nil
	})
}

// ListTables returns an app's tables as options whose value is the table
// ID. It never fails; errors become a single error option.
func ListTables(ctx context.Context, svc TablesService, appID string) []api.Option {
	return SafeOptions(func() ([]api.Option, error) {
		c, err := NewClient(svc, appID, nil)
		if err != nil {
			return nil, err
		}
		tables, err := c.Tables(ctx)
		if err != nil {
			return nil, err
		}
		return tableOptions(tables), nil
	})
}

// Tables lists every table in the app.
func (c *Client) Tables(ctx context.Context) ([]Table, error) {
	return c.svc.ListTables(ctx, c.appID)
}

// ResolveTable finds the first table whose ID or name equals idOrName.
// Tables are re-listed on every call.
func (c *Client) ResolveTable(ctx context.Context, idOrName string) (*Table, error) {
	tables, err := c.Tables(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		if tables[i].ID == idOrName || tables[i].Name == idOrName {
			return &tables[i], nil
		}
	}
	return nil, operation.NewNotFoundError(msgTableNotFound)
}

// ListRows returns up to limit rows of one page as options named by row
// ID, or "Row N" for rows without one. A limit of zero or less means
// DefaultRowLimit.
func (c *Client) ListRows(ctx context.Context, table string, limit int) ([]api.Option, error) {
	t, err := c.ResolveTable(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := c.firstPage(ctx, t.ID, limit)
	if err != nil {
		return nil, err
	}

	opts := make([]api.Option, 0, len(rows))
	for i, row := range rows {
		id := row.ID()
		name := id
		if name == "" {
			name = fmt.Sprintf("Row %d", i+1)
		}
		opts = append(opts, api.Option{Name: name, Value: id})
	}
	return opts, nil
}

// Columns returns a table's columns. The schema endpoint is preferred;
// when the service has no schema the keys of the first row are used,
// sorted, so an empty table has no columns.
func (c *Client) Columns(ctx context.Context, table string) ([]Column, error) {
	t, err := c.ResolveTable(ctx, table)
	if err != nil {
		return nil, err
	}

	schema, err := c.svc.GetSchema(ctx, c.appID, t.ID)
	if err == nil {
		if schema == nil || schema.Columns == nil {
			return nil, ErrInvalidSchema
		}
		return schema.Columns, nil
	}
	if !errors.Is(err, ErrSchemaUnavailable) {
		return nil, err
	}

	c.logger.Debug("schema unavailable, inferring columns from first row", "table", t.ID)

	rows, err := c.firstPage(ctx, t.ID, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Column{}, nil
	}
	return inferColumns(rows[0]), nil
}

// ListColumns returns a table's columns as options.
func (c *Client) ListColumns(ctx context.Context, table string) ([]api.Option, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	return columnOptions(cols), nil
}

// RowPreview returns up to limit rows as "Row: <id>" options. Rows without
// an ID are named "Row N" and valued by their position.
func (c *Client) RowPreview(ctx context.Context, table string, limit int) ([]api.Option, error) {
	if limit <= 0 {
		limit = DefaultRowLimit
	}

	t, err := c.ResolveTable(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := c.firstPage(ctx, t.ID, limit)
	if err != nil {
		return nil, err
	}

	opts := make([]api.Option, 0, len(rows))
	for i, row := range rows {
		if id := row.ID(); id != "" {
			opts = append(opts, api.Option{Name: "Row: " + id, Value: id})
			continue
		}
		opts = append(opts, api.Option{Name: fmt.Sprintf("Row %d", i+1), Value: i})
	}
	return opts, nil
}

// RowsWithConfirmation returns a row preview only when confirmed is true.
func (c *Client) RowsWithConfirmation(ctx context.Context, table string, limit int, confirmed bool) ([]api.Option, error) {
	if !confirmed {
		return nil, operation.NewValidationError(msgConfirmationRequired)
	}
	return c.RowPreview(ctx, table, limit)
}

// GetRowByID scans the first page (up to 1000 rows) for the row. It
// returns nil, nil when the row is absent.
func (c *Client) GetRowByID(ctx context.Context, table, rowID string) (Row, error) {
	rows, err := c.firstPage(ctx, table, rowScanLimit)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ID() == rowID {
			return row, nil
		}
	}
	return nil, nil
}

// AddRow appends a row to the table.
func (c *Client) AddRow(ctx context.Context, table string, values map[string]interface{}) ([]MutationResult, error) {
	m := newMutation(MutationAddRow, table, RowRef{}, values)
	results, err := c.svc.MutateTables(ctx, c.appID, []Mutation{m})
	if err != nil {
		return nil, wrapUpstream("add row", err)
	}
	return results, nil
}

// SetColumnsInRow updates columns of an existing row.
func (c *Client) SetColumnsInRow(ctx context.Context, table string, ref RowRef, values map[string]interface{}) ([]MutationResult, error) {
	m := newMutation(MutationSetColumns, table, ref, values)
	results, err := c.svc.MutateTables(ctx, c.appID, []Mutation{m})
	if err != nil {
		return nil, wrapUpstream("set columns", err)
	}
	return results, nil
}

// DeleteRow removes a row.
func (c *Client) DeleteRow(ctx context.Context, table string, ref RowRef) ([]MutationResult, error) {
	m := newMutation(MutationDeleteRow, table, ref, nil)
	results, err := c.svc.MutateTables(ctx, c.appID, []Mutation{m})
	if err != nil {
		return nil, wrapUpstream("delete row", err)
	}
	return results, nil
}

// RunMutations sends several mutations in one request.
func (c *Client) RunMutations(ctx context.Context, mutations []Mutation) ([]MutationResult, error) {
	results, err := c.svc.MutateTables(ctx, c.appID, mutations)
	if err != nil {
		return nil, wrapUpstream("run mutations", err)
	}
	return results, nil
}

// QueryTable fetches one page of a table starting at the given token.
func (c *Client) QueryTable(ctx context.Context, table, startAt string) (*QueryResult, error) {
	result, err := c.svc.QueryTable(ctx, c.appID, Query{TableName: table, StartAt: startAt})
	if err != nil {
		return nil, wrapUpstream("query table", err)
	}
	return result, nil
}

// QuerySQL runs a SQL query against the app.
func (c *Client) QuerySQL(ctx context.Context, sql string, params []interface{}) (*QueryResult, error) {
	result, err := c.svc.QuerySQL(ctx, c.appID, SQLQuery{SQL: sql, Params: params})
	if err != nil {
		return nil, wrapUpstream("query table (SQL)", err)
	}
	return result, nil
}

// AllRowsPaginated fetches pages until the service returns no next token,
// a page shorter than pageSize, or maxPages pages have been read. Rows are
// returned in fetch order.
func (c *Client) AllRowsPaginated(ctx context.Context, table string, pageSize, maxPages int) ([]Row, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = MaxPages
	}

	all := []Row{}
	startAt := ""
	for page := 0; page < maxPages; page++ {
		result, err := c.QueryTable(ctx, table, startAt)
		if err != nil {
			return nil, err
		}
		if result == nil || result.Rows == nil {
			break
		}

		all = append(all, result.Rows...)
		c.logger.Debug("fetched page", "table", table, "page", page+1, "rows", len(result.Rows))

		if result.Next == "" || len(result.Rows) < pageSize {
			break
		}
		startAt = result.Next
	}
	return all, nil
}

// RowFetchWarning is the advisory shown before rows are fetched for a
// dropdown.
func RowFetchWarning(limit int) string {
	return fmt.Sprintf("⚠️ Fetching rows may return a large amount of data. Only the first %d rows will be shown. Use filters or limits to avoid performance issues.", limit)
}

// firstPage returns at most limit rows of the first page. Truncation is
// done here, not by the service. A limit of zero or less means
// DefaultRowLimit.
func (c *Client) firstPage(ctx context.Context, table string, limit int) ([]Row, error) {
	result, err := c.QueryTable(ctx, table, "")
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	rows := result.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// inferColumns derives columns from a row's keys, excluding the row ID.
func inferColumns(row Row) []Column {
	names := make([]string, 0, len(row))
	for k := range row {
		if k == RowIDKey {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]Column, 0, len(names))
	for _, name := range names {
		cols = append(cols, Column{Name: name, Type: inferColumnType(row[name])})
	}
	return cols
}

func inferColumnType(v interface{}) ColumnType {
	switch v.(type) {
	case bool:
		return ColumnTypeBoolean
	case float64, int, int64:
		return ColumnTypeNumber
	case string:
		return ColumnTypeText
	default:
		return ColumnTypeOther
	}
}

func appOptions(apps []App) []api.Option {
	opts := make([]api.Option, 0, len(apps))
	for _, a := range apps {
		name := a.Name
		if name == "" {
			name = a.ID
		}
		opts = append(opts, api.Option{Name: name, Value: a.ID})
	}
	return opts
}

func tableOptions(tables []Table) []api.Option {
	opts := make([]api.Option, 0, len(tables))
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		if name == "" {
			name = "Unknown"
		}
		opts = append(opts, api.Option{Name: name, Value: t.ID})
	}
	return opts
}

func columnOptions(cols []Column) []api.Option {
	opts := make([]api.Option, 0, len(cols))
	for _, col := range cols {
		opts = append(opts, api.Option{Name: col.Name, Value: col.Name})
	}
	return opts
}
