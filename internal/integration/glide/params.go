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
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cast"

	"github.com/tombee/conductor-glide/internal/operation"
)

// Node parameter names.
const (
	ParamResource          = "resource"
	ParamOperation         = "operation"
	ParamAppID             = "appId"
	ParamTableName         = "tableName"
	ParamRowID             = "rowId"
	ParamRowData           = "rowData"
	ParamRowSearch         = "rowSearch"
	ParamRowLimit          = "rowLimit"
	ParamConfirmRowFetch   = "confirmRowFetch"
	ParamColumnTypeFilter  = "columnTypeFilter"
	ParamResponseTransform = "responseTransform"
)

// params reads node parameters with lenient scalar coercion. Hosts send
// numbers as strings and booleans as "true" often enough that strict type
// assertions would reject valid input.
type params map[string]interface{}

func (p params) string(name string) string {
	v, ok := p[name]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func (p params) required(name string) (string, error) {
	s := p.string(name)
	if s == "" {
		return "", operation.NewValidationError("%s is required", name)
	}
	return s, nil
}

func (p params) int(name string, def int) (int, error) {
	v, ok := p[name]
	if !ok || v == nil || v == "" {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, operation.NewValidationError("%s must be a number", name)
	}
	return n, nil
}

func (p params) bool(name string) bool {
	v, ok := p[name]
	if !ok || v == nil {
		return false
	}
	return cast.ToBool(v)
}

func (p params) strings(name string) []string {
	v, ok := p[name]
	if !ok || v == nil {
		return nil
	}
	if s, isString := v.(string); isString {
		if s == "" {
			return nil
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return cast.ToStringSlice(v)
}

// rowData returns the row payload as a column map. Strings are parsed as
// strict JSON and must hold an object; malformed input is an error, never
// an empty row.
func (p params) rowData() (map[string]interface{}, error) {
	v, ok := p[ParamRowData]
	if !ok || v == nil {
		return nil, operation.NewValidationError("%s is required", ParamRowData)
	}

	switch data := v.(type) {
	case map[string]interface{}:
		return data, nil
	case string:
		return parseRowData([]byte(data))
	case []byte:
		return parseRowData(data)
	default:
		// Typed maps from YAML or the host; round-trip through JSON.
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, operation.NewValidationError("%s must be a JSON object", ParamRowData)
		}
		return parseRowData(raw)
	}
}

func parseRowData(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &operation.Error{
			Type:        operation.ErrorTypeValidation,
			Message:     "Invalid JSON in rowData: " + err.Error(),
			SuggestText: "rowData must be a JSON object with column names as keys",
			Cause:       err,
		}
	}
	var extra interface{}
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, operation.NewValidationError("Invalid JSON in rowData: unexpected data after object")
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, operation.NewValidationError("rowData must be a JSON object")
	}
	return normalizeNumbers(obj).(map[string]interface{}), nil
}

// normalizeNumbers converts json.Number values to int64 when integral and
// float64 otherwise, so integers are sent without a fractional part.
func normalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeNumbers(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeNumbers(val)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
