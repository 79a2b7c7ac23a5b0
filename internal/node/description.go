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

package node

import "github.com/tombee/conductor-glide/internal/operation/api"

// PropertyType is the editor a host renders for a parameter.
type PropertyType string

const (
	PropertyOptions      PropertyType = "options"
	PropertyMultiOptions PropertyType = "multiOptions"
	PropertyString       PropertyType = "string"
	PropertyNumber       PropertyType = "number"
	PropertyBoolean      PropertyType = "boolean"
	PropertyJSON         PropertyType = "json"
	PropertyNotice       PropertyType = "notice"
)

// Property is one node parameter as shown to a workflow author.
type Property struct {
	DisplayName string       `json:"displayName"`
	Name        string       `json:"name"`
	Type        PropertyType `json:"type"`
	Default     interface{}  `json:"default"`
	Required    bool         `json:"required,omitempty"`
	Description string       `json:"description,omitempty"`

	// Options are the static choices for options properties.
	Options []api.Option `json:"options,omitempty"`

	// LoadOptionsMethod names the loader that fills a dynamic dropdown.
	LoadOptionsMethod string `json:"loadOptionsMethod,omitempty"`

	// DependsOn lists parameters whose change reloads the dropdown.
	DependsOn []string `json:"loadOptionsDependsOn,omitempty"`

	MinValue *int `json:"minValue,omitempty"`
	MaxValue *int `json:"maxValue,omitempty"`

	// Show restricts the property to the listed parameter values.
	Show map[string][]string `json:"show,omitempty"`
}

// VisibleFor reports whether the property applies to resource and
// operation.
func (p Property) VisibleFor(resource, operation string) bool {
	return matches(p.Show["resource"], resource) && matches(p.Show["operation"], operation)
}

func matches(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Description is the node type definition a host registers.
type Description struct {
	DisplayName string     `json:"displayName"`
	Name        string     `json:"name"`
	Version     int        `json:"version"`
	Description string     `json:"description"`
	Credentials []string   `json:"credentials"`
	BaseURL     string     `json:"baseURL,omitempty"`
	Properties  []Property `json:"properties"`
}

// Property returns the named property and whether it exists.
func (d Description) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}
