package glide

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-glide/internal/log"
	"github.com/tombee/conductor-glide/internal/node"
	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

func TestIntegration_ImplementsInterfaces(t *testing.T) {
	var _ operation.Connector = (*Integration)(nil)
	var _ api.TypedProvider = (*Integration)(nil)
	var _ api.OptionLoader = (*Integration)(nil)
}

func TestExecute_TableGetAll(t *testing.T) {
	svc := seededService()
	svc.tables["app-1"] = append(svc.tables["app-1"], Table{ID: "native-table-3"})
	g := New(svc, log.Discard())

	result, err := g.Execute(context.Background(), OpTableGetAll, map[string]interface{}{
		"resource": "table",
		"appId":    "app-1",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"tables": []interface{}{
			map[string]interface{}{"name": "Contacts", "id": "native-table-1"},
			map[string]interface{}{"name": "Deals", "id": "native-table-2"},
			map[string]interface{}{"name": "Unknown", "id": "native-table-3"},
		},
	}, result.Response)
}

func TestExecute_UnsupportedOperations(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		inputs   map[string]interface{}
		wantMsg  string
		wantType operation.ErrorType
	}{
		{
			name:     "table create",
			op:       OpTableCreate,
			inputs:   map[string]interface{}{"resource": "table", "appId": "app-1"},
			wantMsg:  "Table operation 'tableCreate' is not yet implemented",
			wantType: operation.ErrorTypeNotImplemented,
		},
		{
			name:     "table delete",
			op:       OpTableDelete,
			inputs:   map[string]interface{}{"resource": "table", "appId": "app-1"},
			wantMsg:  "Table operation 'tableDelete' is not yet implemented",
			wantType: operation.ErrorTypeNotImplemented,
		},
		{
			name:     "unknown row operation",
			op:       "rowUpsert",
			inputs:   map[string]interface{}{"resource": "row", "appId": "app-1"},
			wantMsg:  "Row operation 'rowUpsert' is not supported",
			wantType: operation.ErrorTypeNotImplemented,
		},
		{
			name:     "unknown resource",
			op:       "columnGet",
			inputs:   map[string]interface{}{"resource": "column", "appId": "app-1"},
			wantMsg:  "Resource 'column' is not supported",
			wantType: operation.ErrorTypeNotImplemented,
		},
		{
			name:     "missing app id",
			op:       OpRowGet,
			inputs:   map[string]interface{}{"resource": "row", "tableName": "t", "rowId": "r1"},
			wantMsg:  "appId is required",
			wantType: operation.ErrorTypeValidation,
		},
		{
			name:     "missing row id",
			op:       OpRowDelete,
			inputs:   map[string]interface{}{"appId": "app-1", "tableName": "t"},
			wantMsg:  "rowId is required",
			wantType: operation.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seededService()
			g := New(svc, log.Discard())

			_, err := g.Execute(context.Background(), tt.op, tt.inputs)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, operation.IsType(err, tt.wantType), "got %v", err)
			assert.Empty(t, svc.mutations)
		})
	}
}

func TestExecute_RowCreate(t *testing.T) {
	svc := seededService()
	g := New(svc, log.Discard())

	result, err := g.Execute(context.Background(), OpRowCreate, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowData":   `{"Name": "Linus", "Age": 54}`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"rowID": "new-0"}, result.Response)

	require.Len(t, svc.mutations, 1)
	m := svc.mutations[0]
	assert.Equal(t, MutationAddRow, m.Kind)
	assert.Equal(t, "native-table-1", m.TableName)
	assert.Equal(t, map[string]interface{}{"Name": "Linus", "Age": int64(54)}, m.ColumnValues)
}

func TestExecute_RowCreateAcceptsObject(t *testing.T) {
	svc := seededService()
	g := New(svc, log.Discard())

	_, err := g.Execute(context.Background(), OpRowCreate, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowData":   map[string]interface{}{"Name": "Ken"},
	})
	require.NoError(t, err)
	require.Len(t, svc.mutations, 1)
	assert.Equal(t, "Ken", svc.mutations[0].ColumnValues["Name"])
}

func TestExecute_MalformedRowData(t *testing.T) {
	tests := []struct {
		name    string
		rowData interface{}
		wantMsg string
	}{
		{"truncated", `{"Name": "Linus"`, "Invalid JSON in rowData"},
		{"trailing data", `{"Name": "Linus"} {}`, "Invalid JSON in rowData"},
		{"array", `[1, 2]`, "rowData must be a JSON object"},
		{"not json", `Name=Linus`, "Invalid JSON in rowData"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seededService()
			g := New(svc, log.Discard())

			_, err := g.Execute(context.Background(), OpRowUpdate, map[string]interface{}{
				"appId":     "app-1",
				"tableName": "native-table-1",
				"rowId":     "r1",
				"rowData":   tt.rowData,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, operation.IsType(err, operation.ErrorTypeValidation))
			assert.Empty(t, svc.mutations, "no mutation may be sent for malformed data")
		})
	}
}

func TestExecute_RowUpdateAndDelete(t *testing.T) {
	svc := seededService()
	g := New(svc, log.Discard())
	ctx := context.Background()

	_, err := g.Execute(ctx, OpRowUpdate, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowId":     "r2",
		"rowData":   `{"Age": 86.5}`,
	})
	require.NoError(t, err)

	_, err = g.Execute(ctx, OpRowDelete, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowId":     "r3",
	})
	require.NoError(t, err)

	require.Len(t, svc.mutations, 2)
	assert.Equal(t, MutationSetColumns, svc.mutations[0].Kind)
	assert.Equal(t, "r2", svc.mutations[0].RowID)
	assert.Equal(t, 86.5, svc.mutations[0].ColumnValues["Age"])
	assert.Equal(t, MutationDeleteRow, svc.mutations[1].Kind)
	assert.Equal(t, "r3", svc.mutations[1].RowID)
}

func TestExecute_MutationResultError(t *testing.T) {
	svc := seededService()
	svc.mutateReply = []MutationResult{{"error": "Column 'Foo' does not exist"}}
	g := New(svc, log.Discard())

	_, err := g.Execute(context.Background(), OpRowCreate, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowData":   `{"Foo": 1}`,
	})
	require.Error(t, err)
	assert.Equal(t, "Failed to add row: Column 'Foo' does not exist", err.Error())
	assert.True(t, operation.IsType(err, operation.ErrorTypeUpstream))
}

func TestExecute_RowGet(t *testing.T) {
	g := New(seededService(), log.Discard())

	result, err := g.Execute(context.Background(), OpRowGet, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowId":     "r1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", result.Response["Name"])

	result, err = g.Execute(context.Background(), OpRowGet, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "native-table-1",
		"rowId":     "missing",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, result.Response)
}

func TestExecute_RowGetAll(t *testing.T) {
	svc := newFakeService()
	svc.rows["t"] = makeRows(35)
	svc.pageSize = 10
	g := New(svc, log.Discard())

	result, err := g.Execute(context.Background(), OpRowGetAll, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "t",
		"rowLimit":  10,
	})
	require.NoError(t, err)

	rows, ok := result.Response["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 35)
	assert.Len(t, svc.queries, 4)
}

func TestExecute_RowGetAllDefaultPageSize(t *testing.T) {
	svc := newFakeService()
	svc.rows["t"] = makeRows(150)
	svc.pageSize = 100
	g := New(svc, log.Discard())

	result, err := g.Execute(context.Background(), OpRowGetAll, map[string]interface{}{
		"appId":     "app-1",
		"tableName": "t",
	})
	require.NoError(t, err)
	assert.Len(t, result.Response["rows"], 150)
	assert.Len(t, svc.queries, 2)
}

func TestExecute_ResponseTransform(t *testing.T) {
	g := New(seededService(), log.Discard())

	result, err := g.Execute(context.Background(), OpTableGetAll, map[string]interface{}{
		"appId":             "app-1",
		"responseTransform": "{names: [.tables[].name]}",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"names": []interface{}{"Contacts", "Deals"}}, result.Response)

	result, err = g.Execute(context.Background(), OpTableGetAll, map[string]interface{}{
		"appId":             "app-1",
		"responseTransform": ".tables | length",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": 2}, result.Response)

	_, err = g.Execute(context.Background(), OpTableGetAll, map[string]interface{}{
		"appId":             "app-1",
		"responseTransform": ".tables[",
	})
	require.Error(t, err)
	assert.True(t, operation.IsType(err, operation.ErrorTypeTransform))
}

func TestRunner_ContinueOnFailWithGlide(t *testing.T) {
	svc := seededService()
	g := New(svc, log.Discard())
	runner := node.NewRunner(g, node.WithLogger(log.Discard()), node.WithContinueOnFail(true))

	out, err := runner.Run(context.Background(), node.Request{
		Resource:  ResourceRow,
		Operation: OpRowCreate,
		Parameters: map[string]interface{}{
			"appId":     "app-1",
			"tableName": "native-table-1",
		},
		Items: []node.Item{
			{JSON: map[string]interface{}{}, Params: map[string]interface{}{"rowData": `{"Name": "A"}`}},
			{JSON: map[string]interface{}{}, Params: map[string]interface{}{"rowData": `{"Name": `}},
			{JSON: map[string]interface{}{}, Params: map[string]interface{}{"rowData": `{"Name": "C"}`}},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "new-0", out[0].JSON["rowID"])
	msg, ok := out[1].JSON["error"].(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Invalid JSON in rowData")
	assert.Equal(t, "new-0", out[2].JSON["rowID"])
	assert.Len(t, svc.mutations, 2)
}

func TestRunner_AbortWithGlide(t *testing.T) {
	svc := seededService()
	svc.mutateErr = errors.New("service unavailable")
	g := New(svc, log.Discard())
	runner := node.NewRunner(g, node.WithLogger(log.Discard()))

	_, err := runner.Run(context.Background(), node.Request{
		Resource:   ResourceRow,
		Operation:  OpRowDelete,
		Parameters: map[string]interface{}{"appId": "app-1", "tableName": "t", "rowId": "r1"},
		Items:      []node.Item{node.NewItem(nil), node.NewItem(nil)},
	})
	require.Error(t, err)

	var itemErr *node.ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, 0, itemErr.Index)
	assert.Equal(t, "Failed to delete row: service unavailable", itemErr.Err.Error())
	assert.Len(t, svc.mutations, 1)
}

func TestOperationsAndSchema(t *testing.T) {
	g := New(newFakeService(), nil)

	ops := g.Operations()
	require.Len(t, ops, 8)
	for _, op := range ops {
		assert.NotEmpty(t, op.Resource, op.Name)
	}

	schema := g.OperationSchema(OpRowUpdate)
	require.NotNil(t, schema)
	names := make([]string, 0, len(schema.Parameters))
	for _, p := range schema.Parameters {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, ParamAppID)
	assert.Contains(t, names, ParamTableName)
	assert.Contains(t, names, ParamRowID)
	assert.Contains(t, names, ParamRowData)
	assert.NotContains(t, names, ParamRowSearch)

	assert.Nil(t, g.OperationSchema("rowUpsert"))
}

func TestDescription(t *testing.T) {
	d := Description()
	assert.Equal(t, "glide", d.Name)
	assert.Equal(t, []string{"glideappsApi"}, d.Credentials)

	methods := map[string]bool{}
	for _, p := range d.Properties {
		if p.LoadOptionsMethod != "" {
			methods[p.LoadOptionsMethod] = true
		}
	}
	for _, m := range LoadOptionsMethods() {
		assert.True(t, methods[m], "no property uses %s", m)
	}
}

func TestDescription_RowFetchWarning(t *testing.T) {
	var notice *node.Property
	for _, p := range Description().Properties {
		if p.Name == "rowFetchWarning" {
			notice = &p
			break
		}
	}
	require.NotNil(t, notice)
	assert.Equal(t, node.PropertyNotice, notice.Type)
	assert.Equal(t, RowFetchWarning(DefaultRowLimit), notice.Description)
	assert.Contains(t, notice.Description, "Only the first 20 rows will be shown")
	assert.True(t, notice.VisibleFor(ResourceRow, OpRowGetAll))
	assert.False(t, notice.VisibleFor(ResourceRow, OpRowCreate))
}
