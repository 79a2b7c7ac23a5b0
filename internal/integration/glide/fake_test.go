package glide

import (
	"context"
	"strconv"
)

// fakeTablesService is an in-memory TablesService. Rows are served in
// pages of pageSize (all rows when zero); StartAt is the row offset.
type fakeTablesService struct {
	apps     []App
	tables   map[string][]Table
	rows     map[string][]Row
	schemas  map[string]*Schema
	pageSize int

	// next overrides the next token of every page when set.
	next string

	schemaErr   error
	listErr     error
	queryErr    error
	mutateErr   error
	mutateReply []MutationResult

	listTablesCalls int
	queries         []Query
	sqlQueries      []SQLQuery
	mutations       []Mutation
}

func newFakeService() *fakeTablesService {
	return &fakeTablesService{
		tables:  map[string][]Table{},
		rows:    map[string][]Row{},
		schemas: map[string]*Schema{},
	}
}

func (f *fakeTablesService) calls() int {
	return len(f.queries) + len(f.sqlQueries) + len(f.mutations) + f.listTablesCalls
}

func (f *fakeTablesService) ListApps(ctx context.Context) ([]App, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.apps, nil
}

func (f *fakeTablesService) ListTables(ctx context.Context, appID string) ([]Table, error) {
	f.listTablesCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tables[appID], nil
}

func (f *fakeTablesService) GetSchema(ctx context.Context, appID, tableID string) (*Schema, error) {
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schemas[tableID], nil
}

func (f *fakeTablesService) QueryTable(ctx context.Context, appID string, q Query) (*QueryResult, error) {
	f.queries = append(f.queries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	rows := f.rows[q.TableName]
	offset := 0
	if q.StartAt != "" {
		offset, _ = strconv.Atoi(q.StartAt)
	}
	if offset > len(rows) {
		offset = len(rows)
	}

	end := len(rows)
	if f.pageSize > 0 && offset+f.pageSize < end {
		end = offset + f.pageSize
	}

	result := &QueryResult{Rows: append([]Row{}, rows[offset:end]...)}
	switch {
	case f.next != "":
		result.Next = f.next
	case end < len(rows):
		result.Next = strconv.Itoa(end)
	}
	return result, nil
}

func (f *fakeTablesService) QuerySQL(ctx context.Context, appID string, q SQLQuery) (*QueryResult, error) {
	f.sqlQueries = append(f.sqlQueries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &QueryResult{Rows: []Row{{RowIDKey: "sql-1"}}}, nil
}

func (f *fakeTablesService) MutateTables(ctx context.Context, appID string, mutations []Mutation) ([]MutationResult, error) {
	f.mutations = append(f.mutations, mutations...)
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	if f.mutateReply != nil {
		return f.mutateReply, nil
	}
	out := make([]MutationResult, 0, len(mutations))
	for i := range mutations {
		out = append(out, MutationResult{"rowID": "new-" + strconv.Itoa(i)})
	}
	return out, nil
}

// seededService returns a fake with one app holding a "Contacts" table.
func seededService() *fakeTablesService {
	f := newFakeService()
	f.apps = []App{{ID: "app-1", Name: "CRM"}, {ID: "app-2"}}
	f.tables["app-1"] = []Table{
		{ID: "native-table-1", Name: "Contacts"},
		{ID: "native-table-2", Name: "Deals"},
	}
	f.rows["native-table-1"] = []Row{
		{RowIDKey: "r1", "Name": "Ada Lovelace", "Age": float64(36)},
		{RowIDKey: "r2", "Name": "Grace Hopper", "Age": float64(85)},
		{RowIDKey: "r3", "Name": "Alan Turing", "Age": float64(41)},
	}
	f.schemas["native-table-1"] = &Schema{Columns: []Column{
		{Name: "Name", Type: ColumnTypeText},
		{Name: "Age", Type: ColumnTypeNumber},
		{Name: "Joined", Type: ColumnTypeDate},
		{Name: "Notes"},
	}}
	return f
}

func makeRows(n int) []Row {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{RowIDKey: "row-" + strconv.Itoa(i)})
	}
	return rows
}
