package glide

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
	"github.com/tombee/conductor-glide/internal/operation/transport"
)

func newTestHTTPService(t *testing.T, handler http.HandlerFunc) *HTTPService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tr, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{
		BaseURL: server.URL,
		Auth:    &transport.AuthConfig{Type: transport.AuthTypeBearer, Token: "test-token"},
	})
	require.NoError(t, err)

	svc, err := NewHTTPService(&api.ProviderConfig{Transport: tr, BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewHTTPService_RequiresTransport(t *testing.T) {
	_, err := NewHTTPService(&api.ProviderConfig{})
	assert.Error(t, err)
}

func TestHTTPService_ListApps(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/apps", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":[{"id":"app-1","name":"CRM"}]}`))
	})

	apps, err := svc.ListApps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []App{{ID: "app-1", Name: "CRM"}}, apps)
}

func TestHTTPService_ListTables(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/tables", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"native-table-1","name":"Contacts"}]}`))
	})

	tables, err := svc.ListTables(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, []Table{{ID: "native-table-1", Name: "Contacts"}}, tables)
}

func TestHTTPService_GetSchema(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/tables/native-table-1/schema", r.URL.Path)
		w.Write([]byte(`{"data":{"columns":[{"name":"Name","type":"string"},{"name":"Done","type":{"kind":"boolean"}}]}}`))
	})

	schema, err := svc.GetSchema(context.Background(), "app-1", "native-table-1")
	require.NoError(t, err)
	require.Len(t, schema.Columns, 2)
	assert.Equal(t, "Done", schema.Columns[1].Name)
	assert.Equal(t, ColumnTypeBoolean, schema.Columns[1].Type)
}

func TestHTTPService_GetSchemaUnavailable(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"not found"}}`))
	})

	_, err := svc.GetSchema(context.Background(), "app-1", "native-table-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaUnavailable))
}

func TestHTTPService_GetSchemaInvalid(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	_, err := svc.GetSchema(context.Background(), "app-1", "native-table-1")
	require.Error(t, err)
	assert.Equal(t, "Invalid schema structure", err.Error())
}

func TestHTTPService_QueryTable(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/apps/app-1/tables/query", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Queries []map[string]interface{} `json:"queries"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Queries, 1)
		assert.Equal(t, "native-table-1", req.Queries[0]["tableName"])
		assert.Equal(t, "page-2", req.Queries[0]["startAt"])

		w.Write([]byte(`[{"rows":[{"$rowID":"r1","Name":"Ada"}],"next":"page-3"}]`))
	})

	result, err := svc.QueryTable(context.Background(), "app-1", Query{TableName: "native-table-1", StartAt: "page-2"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "r1", result.Rows[0].ID())
	assert.Equal(t, "page-3", result.Next)
}

func TestHTTPService_QueryEmptyResponse(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	result, err := svc.QueryTable(context.Background(), "app-1", Query{TableName: "t"})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Next)
}

func TestHTTPService_QuerySQL(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"queries":[{"sql":"SELECT 1","params":[1]}]}`, string(body))
		w.Write([]byte(`[{"rows":[]}]`))
	})

	_, err := svc.QuerySQL(context.Background(), "app-1", SQLQuery{SQL: "SELECT 1", Params: []interface{}{1}})
	require.NoError(t, err)
}

func TestHTTPService_MutateTables(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/tables/mutate", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"mutations":[
			{"kind":"add-row-to-table","tableName":"native-table-1","columnValues":{"Name":"Ada"}},
			{"kind":"delete-row","tableName":"native-table-1","rowID":"r9"}
		]}`, string(body))
		w.Write([]byte(`[{"rowID":"r10"},{}]`))
	})

	results, err := svc.MutateTables(context.Background(), "app-1", []Mutation{
		newMutation(MutationAddRow, "native-table-1", RowRef{}, map[string]interface{}{"Name": "Ada"}),
		newMutation(MutationDeleteRow, "native-table-1", RowByID("r9"), nil),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "r10", results[0]["rowID"])
}

func TestHTTPService_TranslatesErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantType operation.ErrorType
	}{
		{"nested message", http.StatusBadRequest, `{"error":{"message":"Invalid table"}}`, "Invalid table", operation.ErrorTypeUpstream},
		{"string error", http.StatusUnauthorized, `{"error":"Invalid token"}`, "Invalid token", operation.ErrorTypeAuth},
		{"top-level message", http.StatusTooManyRequests, `{"message":"Slow down"}`, "Slow down", operation.ErrorTypeRateLimit},
		{"plain body", http.StatusInternalServerError, `oops`, "HTTP 500: oops", operation.ErrorTypeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := svc.ListApps(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, operation.IsType(err, tt.wantType))

			var opErr *operation.Error
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.status, opErr.StatusCode)
		})
	}
}

func TestHTTPService_ClientAddRowError(t *testing.T) {
	svc := newTestHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"message":"Column 'Foo' does not exist"}}`))
	})
	c, err := NewClient(svc, "app-1", nil)
	require.NoError(t, err)

	_, err = c.AddRow(context.Background(), "native-table-1", map[string]interface{}{"Foo": 1})
	require.Error(t, err)
	assert.Equal(t, "Failed to add row: Column 'Foo' does not exist", err.Error())
}

// TestLiveGlideAPI lists apps against the real service. It runs only when
// GLIDE_API_TOKEN is set.
func TestLiveGlideAPI(t *testing.T) {
	token := os.Getenv("GLIDE_API_TOKEN")
	if token == "" {
		t.Skip("GLIDE_API_TOKEN not set")
	}

	tr, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{
		BaseURL: DefaultBaseURL,
		Auth:    &transport.AuthConfig{Type: transport.AuthTypeBearer, Token: token},
	})
	require.NoError(t, err)
	svc, err := NewHTTPService(&api.ProviderConfig{Transport: tr})
	require.NoError(t, err)

	opts := ListApps(context.Background(), svc)
	require.NotEmpty(t, opts)
	t.Logf("found %d apps", len(opts))
}
