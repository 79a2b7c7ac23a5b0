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

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestItemMiddleware_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	mw := NewItemMiddleware(logger, false)
	ev := &ItemEvent{Resource: "row", Operation: "rowGet", Index: 0, Metadata: map[string]interface{}{AppIDKey: "app1"}}

	if err := mw.Handle(ev, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(entries))
	}
	if entries[0][EventKey] != "item_start" || entries[0][AppIDKey] != "app1" {
		t.Errorf("unexpected start entry %v", entries[0])
	}
	if entries[1][EventKey] != "item_done" || entries[1]["success"] != true {
		t.Errorf("unexpected done entry %v", entries[1])
	}
}

func TestItemMiddleware_FailureLevels(t *testing.T) {
	tests := []struct {
		name           string
		continueOnFail bool
		wantLevel      string
	}{
		{"abort", false, "ERROR"},
		{"captured", true, "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

			mw := NewItemMiddleware(logger, tt.continueOnFail)
			wantErr := errors.New("Table not found")
			err := mw.Handle(&ItemEvent{Resource: "row", Operation: "rowGetAll", Index: 2}, func() error { return wantErr })
			if err != wantErr {
				t.Fatalf("expected error to be returned unchanged, got %v", err)
			}

			entries := decodeLines(t, &buf)
			if len(entries) != 1 {
				t.Fatalf("expected only the outcome at info level, got %d lines", len(entries))
			}
			if entries[0]["level"] != tt.wantLevel {
				t.Errorf("expected level %s, got %v", tt.wantLevel, entries[0]["level"])
			}
			if entries[0]["error"] != "Table not found" {
				t.Errorf("unexpected error field %v", entries[0]["error"])
			}
			if entries[0][ItemIndexKey] != float64(2) {
				t.Errorf("unexpected index %v", entries[0][ItemIndexKey])
			}
		})
	}
}
