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

package run

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-glide/internal/node"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// ParseItems decodes input items. An empty format tries JSON first, then
// YAML.
func ParseItems(data []byte, format string) ([]node.Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	switch format {
	case formatJSON:
		return node.ParseItems(data)
	case formatYAML:
		return parseYAMLItems(data)
	default:
		items, jsonErr := node.ParseItems(data)
		if jsonErr == nil {
			return items, nil
		}
		items, yamlErr := parseYAMLItems(data)
		if yamlErr != nil {
			return nil, fmt.Errorf("items are neither JSON (%v) nor YAML (%v)", jsonErr, yamlErr)
		}
		return items, nil
	}
}

func parseYAMLItems(data []byte) ([]node.Item, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("items must be a YAML list of mappings: %w", err)
	}
	return node.FromMaps(raw)
}

// ParseParams turns key=value pairs into node parameters. Values are kept
// as strings; the node coerces them per parameter.
func ParseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		params[key] = value
	}
	return params, nil
}
