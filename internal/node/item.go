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

// Package node executes a connector operation over a list of input items
// the way a workflow host does: strictly in order, one output record per
// item, with optional continue-on-fail.
package node

import (
	"encoding/json"
	"fmt"
)

// Item is one input or output record.
type Item struct {
	// JSON is the record payload.
	JSON map[string]interface{} `json:"json" yaml:"json"`

	// Params overrides node parameters for this item only.
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewItem wraps a payload as an item.
func NewItem(payload map[string]interface{}) Item {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return Item{JSON: payload}
}

// ErrorItem is the output record written for a failed item when
// continue-on-fail is enabled.
func ErrorItem(err error) Item {
	return Item{JSON: map[string]interface{}{"error": err.Error()}}
}

// ParseItems decodes a JSON array of items. Elements without a "json" key
// are treated as bare payloads.
func ParseItems(data []byte) ([]Item, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("items must be a JSON array of objects: %w", err)
	}
	return FromMaps(raw)
}

// FromMaps converts decoded records into items.
func FromMaps(raw []map[string]interface{}) ([]Item, error) {
	items := make([]Item, 0, len(raw))
	for i, m := range raw {
		payload, hasJSON := m["json"]
		if !hasJSON {
			items = append(items, NewItem(m))
			continue
		}

		obj, ok := payload.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("item %d: json must be an object", i)
		}
		item := NewItem(obj)

		if p, ok := m["params"]; ok && p != nil {
			params, ok := p.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("item %d: params must be an object", i)
			}
			item.Params = params
		}
		items = append(items, item)
	}
	return items, nil
}

// merge returns base overlaid with the item's parameter overrides.
func (it Item) merge(base map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(it.Params))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range it.Params {
		out[k] = v
	}
	return out
}
