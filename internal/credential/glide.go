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

package credential

import (
	"net/http"

	"github.com/tombee/conductor-glide/internal/operation/transport"
)

// GlideName is the credential type name hosts reference.
const GlideName = "glideappsApi"

// GlideBaseURL is the Glide tables API host.
const GlideBaseURL = "https://api.glideapps.com"

func init() {
	register("glide", Glide)
}

// Glide returns the Glide Apps API credential descriptor. Both environments
// use the same host; the field is kept so hosts can label workflows.
func Glide() *Descriptor {
	return &Descriptor{
		Name:             GlideName,
		DisplayName:      "Glide Apps API",
		DocumentationURL: "https://apidocs.glideapps.com/api-reference/v2/general/authentication",
		Fields: []Field{
			environmentField("test"),
			{
				Name:        "apiToken",
				DisplayName: "API Token",
				Type:        FieldTypePassword,
				Required:    true,
				Description: "Your Glide Apps API Token",
			},
		},
		Probe: Probe{Method: http.MethodGet, Path: "/apps"},
		baseURLs: map[Environment]string{
			EnvironmentTest: GlideBaseURL,
			EnvironmentLive: GlideBaseURL,
		},
		authenticate: func(cred Credential) *transport.AuthConfig {
			return &transport.AuthConfig{
				Type:  transport.AuthTypeBearer,
				Token: cred.Secret(),
			}
		},
	}
}

func environmentField(def string) Field {
	return Field{
		Name:        "environment",
		DisplayName: "Environment",
		Type:        FieldTypeOptions,
		Default:     def,
		Options: []FieldOption{
			{Name: "Test", Value: string(EnvironmentTest), Description: "Use test environment (sandbox)"},
			{Name: "Live", Value: string(EnvironmentLive), Description: "Use live environment (production)"},
		},
	}
}
