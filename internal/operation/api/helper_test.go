package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/transport"
)

func TestBaseProvider_BuildURL(t *testing.T) {
	p := NewBaseProvider("glide", &ProviderConfig{BaseURL: "https://api.glideapps.com/"})

	got, err := p.BuildURL("/apps/{appID}/tables/{tableID}/schema", map[string]string{
		"appID":   "app 1",
		"tableID": "native-table-abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://api.glideapps.com/apps/app%201/tables/native-table-abc/schema", got)

	_, err = p.BuildURL("/apps/{appID}/tables", nil)
	require.Error(t, err)
	assert.True(t, operation.IsType(err, operation.ErrorTypeValidation))
	assert.Equal(t, "missing required parameter: appID", err.Error())
}

func TestBaseProvider_BuildQueryString(t *testing.T) {
	p := NewBaseProvider("glide", &ProviderConfig{BaseURL: "https://api.glideapps.com"})

	assert.Equal(t, "", p.BuildQueryString(nil))
	assert.Equal(t, "", p.BuildQueryString(map[string]string{"next": ""}))
	assert.Equal(t, "?limit=20&next=tok", p.BuildQueryString(map[string]string{"next": "tok", "limit": "20"}))
}

func TestBaseProvider_ValidateRequired(t *testing.T) {
	p := NewBaseProvider("glide", &ProviderConfig{})

	err := p.ValidateRequired(map[string]interface{}{"appId": "a1", "tableId": "t1"}, []string{"appId", "tableId"})
	assert.NoError(t, err)

	err = p.ValidateRequired(map[string]interface{}{"appId": "  "}, []string{"appId"})
	require.Error(t, err)
	assert.Equal(t, "appId is required", err.Error())

	err = p.ValidateRequired(map[string]interface{}{}, []string{"tableId"})
	require.Error(t, err)
	assert.Equal(t, "tableId is required", err.Error())
}

func TestBaseProvider_ExecuteRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.JSONEq(t, `{"queries":[{"tableName":"t1"}]}`, string(body))
		w.Header().Set("X-Request-ID", "req-9")
		w.Write([]byte(`[{"rows":[{"$rowID":"r1"}]}]`))
	}))
	defer server.Close()

	tr, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{BaseURL: server.URL})
	require.NoError(t, err)

	p := NewBaseProvider("glide", &ProviderConfig{Transport: tr, BaseURL: server.URL})
	resp, err := p.ExecuteRequest(context.Background(), "rowGetAll", http.MethodPost, server.URL+"/apps/a/tables/query",
		map[string]interface{}{"queries": []interface{}{map[string]interface{}{"tableName": "t1"}}})
	require.NoError(t, err)

	var parsed []map[string]interface{}
	require.NoError(t, p.ParseJSONResponse(resp, &parsed))
	require.Len(t, parsed, 1)

	result := p.ToResult(resp, map[string]interface{}{"ok": true}, parsed)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "req-9", result.Metadata[transport.MetadataRequestID])
	assert.Equal(t, true, result.Response["ok"])
}

func TestBaseProvider_ParseJSONResponse_Empty(t *testing.T) {
	p := NewBaseProvider("glide", &ProviderConfig{})

	var target map[string]interface{}
	assert.NoError(t, p.ParseJSONResponse(&transport.Response{}, &target))
	assert.Nil(t, target)

	err := p.ParseJSONResponse(&transport.Response{Body: []byte("not json")}, &target)
	assert.Error(t, err)
}
