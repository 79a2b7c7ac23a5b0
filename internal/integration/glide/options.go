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
	"strings"

	"github.com/tombee/conductor-glide/internal/operation/api"
)

const (
	// DefaultRowLimit is the dropdown row limit when none is given.
	DefaultRowLimit = 20

	// MinRowLimit and MaxRowLimit bound the dropdown row limit.
	MinRowLimit = 1
	MaxRowLimit = 200

	// ConfirmationAdvisory is the only option shown while row fetching is
	// not confirmed.
	ConfirmationAdvisory = "⚠️ Please Enable Confirmation to Fetch Rows."
)

// ErrorOption renders an error as an unusable dropdown entry.
func ErrorOption(err error) api.Option {
	return api.Option{Name: "Error: " + err.Error(), Value: ""}
}

// SafeOptions runs fn and returns its options, or a single error option if
// it fails. A nil result becomes an empty list.
func SafeOptions(fn func() ([]api.Option, error)) []api.Option {
	opts, err := fn()
	if err != nil {
		return []api.Option{ErrorOption(err)}
	}
	if opts == nil {
		return []api.Option{}
	}
	return opts
}

// ConfirmationGate returns the advisory option and false when confirmed is
// false. Callers must not contact the service in that case.
func ConfirmationGate(confirmed bool) ([]api.Option, bool) {
	if confirmed {
		return nil, true
	}
	return []api.Option{{Name: ConfirmationAdvisory, Value: ""}}, false
}

// ClampRowLimit bounds a requested row limit to [MinRowLimit, MaxRowLimit].
// Zero means unset and yields DefaultRowLimit.
func ClampRowLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultRowLimit
	case limit < MinRowLimit:
		return MinRowLimit
	case limit > MaxRowLimit:
		return MaxRowLimit
	default:
		return limit
	}
}

// FilterOptions keeps options whose name contains search, ignoring case.
// An empty search keeps everything.
func FilterOptions(opts []api.Option, search string) []api.Option {
	if search == "" {
		return opts
	}
	needle := strings.ToLower(search)

	out := make([]api.Option, 0, len(opts))
	for _, o := range opts {
		if strings.Contains(strings.ToLower(o.Name), needle) {
			out = append(out, o)
		}
	}
	return out
}

// FilterColumns keeps columns whose type is in types. Columns without a
// type count as "other". An empty filter keeps everything.
func FilterColumns(cols []Column, types []string) []Column {
	if len(types) == 0 {
		return cols
	}
	want := make(map[ColumnType]bool, len(types))
	for _, t := range types {
		want[ColumnType(strings.ToLower(t))] = true
	}

	out := make([]Column, 0, len(cols))
	for _, col := range cols {
		ct := col.Type
		if ct == "" {
			ct = ColumnTypeOther
		}
		if want[ct] {
			out = append(out, col)
		}
	}
	return out
}
