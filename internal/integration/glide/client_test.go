package glide

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-glide/internal/log"
	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

func newTestClient(t *testing.T, svc TablesService) *Client {
	t.Helper()
	c, err := NewClient(svc, "app-1", log.Discard())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAppID(t *testing.T) {
	_, err := NewClient(newFakeService(), "  ", nil)
	require.Error(t, err)
	assert.Equal(t, "appId is required", err.Error())
	assert.True(t, operation.IsType(err, operation.ErrorTypeValidation))
}

func TestListApps(t *testing.T) {
	opts := ListApps(context.Background(), seededService())
	assert.Equal(t, []api.Option{
		{Name: "CRM", Value: "app-1"},
		{Name: "app-2", Value: "app-2"},
	}, opts)
}

func TestListApps_ErrorBecomesOption(t *testing.T) {
	svc := newFakeService()
	svc.listErr = errors.New("token rejected")

	opts := ListApps(context.Background(), svc)
	assert.Equal(t, []api.Option{{Name: "Error: token rejected", Value: ""}}, opts)
}

func TestListTables_ValueIsTableID(t *testing.T) {
	opts := ListTables(context.Background(), seededService(), "app-1")
	assert.Equal(t, []api.Option{
		{Name: "Contacts", Value: "native-table-1"},
		{Name: "Deals", Value: "native-table-2"},
	}, opts)
}

func TestListTables_MissingAppID(t *testing.T) {
	opts := ListTables(context.Background(), seededService(), "")
	assert.Equal(t, []api.Option{{Name: "Error: appId is required", Value: ""}}, opts)
}

func TestResolveTable(t *testing.T) {
	svc := seededService()
	c := newTestClient(t, svc)

	byName, err := c.ResolveTable(context.Background(), "Contacts")
	require.NoError(t, err)
	assert.Equal(t, "native-table-1", byName.ID)

	byID, err := c.ResolveTable(context.Background(), "native-table-2")
	require.NoError(t, err)
	assert.Equal(t, "Deals", byID.Name)

	_, err = c.ResolveTable(context.Background(), "Missing")
	require.Error(t, err)
	assert.Equal(t, "Table not found", err.Error())
	assert.True(t, operation.IsType(err, operation.ErrorTypeNotFound))

	assert.Equal(t, 3, svc.listTablesCalls, "tables are re-listed on every call")
}

func TestListRows_TruncatesAndNames(t *testing.T) {
	svc := seededService()
	svc.rows["native-table-1"] = append(svc.rows["native-table-1"], Row{"Name": "No ID"})
	c := newTestClient(t, svc)

	opts, err := c.ListRows(context.Background(), "Contacts", 2)
	require.NoError(t, err)
	assert.Equal(t, []api.Option{
		{Name: "r1", Value: "r1"},
		{Name: "r2", Value: "r2"},
	}, opts)

	opts, err = c.ListRows(context.Background(), "Contacts", 10)
	require.NoError(t, err)
	require.Len(t, opts, 4)
	assert.Equal(t, api.Option{Name: "Row 4", Value: ""}, opts[3])

	require.NotEmpty(t, svc.queries)
	assert.Equal(t, "native-table-1", svc.queries[0].TableName)
}

func TestListRows_NonPositiveLimitUsesDefault(t *testing.T) {
	svc := seededService()
	svc.rows["native-table-1"] = makeRows(50)
	c := newTestClient(t, svc)

	for _, limit := range []int{0, -1} {
		opts, err := c.ListRows(context.Background(), "Contacts", limit)
		require.NoError(t, err)
		assert.Len(t, opts, DefaultRowLimit, "limit %d", limit)
	}
}

func TestColumns_FromSchema(t *testing.T) {
	c := newTestClient(t, seededService())

	cols, err := c.Columns(context.Background(), "Contacts")
	require.NoError(t, err)
	assert.Len(t, cols, 4)
	assert.Equal(t, "Name", cols[0].Name)
}

func TestColumns_FallsBackToFirstRow(t *testing.T) {
	svc := seededService()
	svc.schemaErr = fmt.Errorf("%w: HTTP 404", ErrSchemaUnavailable)
	c := newTestClient(t, svc)

	cols, err := c.Columns(context.Background(), "Contacts")
	require.NoError(t, err)
	assert.Equal(t, []Column{
		{Name: "Age", Type: ColumnTypeNumber},
		{Name: "Name", Type: ColumnTypeText},
	}, cols)
}

func TestColumns_EmptyTableHasNoColumns(t *testing.T) {
	svc := seededService()
	svc.schemaErr = ErrSchemaUnavailable
	c := newTestClient(t, svc)

	cols, err := c.Columns(context.Background(), "Deals")
	require.NoError(t, err)
	assert.NotNil(t, cols)
	assert.Empty(t, cols)
}

func TestColumns_InvalidSchema(t *testing.T) {
	svc := seededService()
	svc.schemas["native-table-1"] = &Schema{}
	c := newTestClient(t, svc)

	_, err := c.Columns(context.Background(), "Contacts")
	require.Error(t, err)
	assert.Equal(t, "Invalid schema structure", err.Error())
}

func TestColumns_OtherSchemaErrorsPropagate(t *testing.T) {
	svc := seededService()
	svc.schemaErr = operation.NewUpstreamError("HTTP 500", nil)
	c := newTestClient(t, svc)

	_, err := c.Columns(context.Background(), "Contacts")
	require.Error(t, err)
	assert.Equal(t, "HTTP 500", err.Error())
}

func TestRowPreview(t *testing.T) {
	svc := seededService()
	svc.rows["native-table-1"] = []Row{{RowIDKey: "r1"}, {"Name": "anonymous"}}
	c := newTestClient(t, svc)

	opts, err := c.RowPreview(context.Background(), "Contacts", 0)
	require.NoError(t, err)
	assert.Equal(t, []api.Option{
		{Name: "Row: r1", Value: "r1"},
		{Name: "Row 2", Value: 1},
	}, opts)
}

func TestRowsWithConfirmation_RequiresConfirmation(t *testing.T) {
	svc := seededService()
	c := newTestClient(t, svc)

	_, err := c.RowsWithConfirmation(context.Background(), "Contacts", 5, false)
	require.Error(t, err)
	assert.Equal(t, "User confirmation required before fetching rows.", err.Error())
	assert.Zero(t, svc.calls())

	opts, err := c.RowsWithConfirmation(context.Background(), "Contacts", 2, true)
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestGetRowByID(t *testing.T) {
	c := newTestClient(t, seededService())

	row, err := c.GetRowByID(context.Background(), "native-table-1", "r2")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", row["Name"])

	row, err = c.GetRowByID(context.Background(), "native-table-1", "nope")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMutations_SendOneMutationEach(t *testing.T) {
	svc := seededService()
	c := newTestClient(t, svc)
	ctx := context.Background()

	_, err := c.AddRow(ctx, "native-table-1", map[string]interface{}{"Name": "Linus"})
	require.NoError(t, err)
	_, err = c.SetColumnsInRow(ctx, "native-table-1", RowByID("r1"), map[string]interface{}{"Age": 37})
	require.NoError(t, err)
	idx := 2
	_, err = c.DeleteRow(ctx, "native-table-1", RowRef{Index: &idx})
	require.NoError(t, err)

	require.Len(t, svc.mutations, 3)
	assert.Equal(t, MutationAddRow, svc.mutations[0].Kind)
	assert.Equal(t, "Linus", svc.mutations[0].ColumnValues["Name"])
	assert.Equal(t, MutationSetColumns, svc.mutations[1].Kind)
	assert.Equal(t, "r1", svc.mutations[1].RowID)
	assert.Equal(t, MutationDeleteRow, svc.mutations[2].Kind)
	require.NotNil(t, svc.mutations[2].RowIndex)
	assert.Equal(t, 2, *svc.mutations[2].RowIndex)
}

func TestMutations_WrapUpstreamFailures(t *testing.T) {
	svc := seededService()
	svc.mutateErr = operation.NewUpstreamError("row is locked", nil)
	c := newTestClient(t, svc)
	ctx := context.Background()

	_, err := c.AddRow(ctx, "t", nil)
	assert.EqualError(t, err, "Failed to add row: row is locked")

	_, err = c.SetColumnsInRow(ctx, "t", RowByID("r1"), nil)
	assert.EqualError(t, err, "Failed to set columns: row is locked")

	_, err = c.DeleteRow(ctx, "t", RowByID("r1"))
	assert.EqualError(t, err, "Failed to delete row: row is locked")

	_, err = c.RunMutations(ctx, []Mutation{{Kind: MutationDeleteRow}})
	assert.EqualError(t, err, "Failed to run mutations: row is locked")
	assert.True(t, operation.IsType(err, operation.ErrorTypeUpstream))
}

func TestQuerySQL(t *testing.T) {
	svc := seededService()
	c := newTestClient(t, svc)

	result, err := c.QuerySQL(context.Background(), `SELECT * FROM "native-table-1" WHERE "Age" > $1`, []interface{}{40})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Len(t, svc.sqlQueries, 1)
	assert.Equal(t, []interface{}{40}, svc.sqlQueries[0].Params)

	svc.queryErr = errors.New("syntax error")
	_, err = c.QuerySQL(context.Background(), "SELEC", nil)
	assert.EqualError(t, err, "Failed to query table (SQL): syntax error")
}

func TestAllRowsPaginated(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		next      string
		wantRows  int
		wantPages int
	}{
		{"single short page", 5, 10, "", 5, 1},
		{"stops when next token is empty", 20, 10, "", 20, 2},
		{"stops on short page", 25, 10, "", 25, 3},
		{"stops after max pages", 500, 10, "", 100, 10},
		{"never-ending next token capped", 10, 10, "more", 100, 10},
		{"empty table", 0, 10, "", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			svc.rows["t"] = makeRows(tt.total)
			svc.pageSize = tt.pageSize
			svc.next = tt.next
			c := newTestClient(t, svc)

			rows, err := c.AllRowsPaginated(context.Background(), "t", tt.pageSize, MaxPages)
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			assert.Len(t, svc.queries, tt.wantPages)
		})
	}
}

func TestAllRowsPaginated_PreservesOrder(t *testing.T) {
	svc := newFakeService()
	svc.rows["t"] = makeRows(25)
	svc.pageSize = 10
	c := newTestClient(t, svc)

	rows, err := c.AllRowsPaginated(context.Background(), "t", 10, MaxPages)
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("row-%d", i), row.ID())
	}
	assert.Equal(t, "", svc.queries[0].StartAt)
	assert.Equal(t, "10", svc.queries[1].StartAt)
}

func TestAllRowsPaginated_QueryError(t *testing.T) {
	svc := newFakeService()
	svc.queryErr = errors.New("boom")
	c := newTestClient(t, svc)

	_, err := c.AllRowsPaginated(context.Background(), "t", 10, MaxPages)
	assert.EqualError(t, err, "Failed to query table: boom")
}

func TestRowFetchWarning(t *testing.T) {
	assert.Contains(t, RowFetchWarning(20), "Only the first 20 rows will be shown")
}

func TestExtractMutationErrors(t *testing.T) {
	errs := ExtractMutationErrors([]MutationResult{
		{"rowID": "r1"},
		{"error": "column missing"},
		nil,
		{"error": map[string]interface{}{"code": "E1"}},
	})
	assert.Equal(t, []string{"column missing", `{"code":"E1"}`}, errs)
}
