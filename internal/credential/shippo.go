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
	"strings"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/transport"
)

const (
	// ShippoName is the credential type name hosts reference.
	ShippoName = "shippoApi"

	// ShippoAPIVersion is pinned on every request.
	ShippoAPIVersion = "2018-02-08"

	// ShippoBaseURL serves both test and live tokens; the token prefix
	// selects the mode.
	ShippoBaseURL = "https://api.goshippo.com"
)

func init() {
	register("shippo", Shippo)
}

// Shippo returns the Shippo API credential descriptor.
func Shippo() *Descriptor {
	return &Descriptor{
		Name:             ShippoName,
		DisplayName:      "Shippo API",
		DocumentationURL: "https://docs.goshippo.com/docs/guides_general/authentication/",
		Fields: []Field{
			environmentField("test"),
			{
				Name:        "apiToken",
				DisplayName: "API Token",
				Type:        FieldTypePassword,
				Required:    true,
				Description: `Your Shippo API Token (starts with "shippo_test_" or "shippo_live_")`,
			},
		},
		Probe: Probe{Method: http.MethodGet, Path: "/addresses/"},
		baseURLs: map[Environment]string{
			EnvironmentTest: ShippoBaseURL,
			EnvironmentLive: ShippoBaseURL,
		},
		authenticate: func(cred Credential) *transport.AuthConfig {
			return &transport.AuthConfig{
				Type: transport.AuthTypeHeaders,
				Headers: map[string]string{
					"Authorization":      "ShippoToken " + cred.Secret(),
					"Shippo-API-Version": ShippoAPIVersion,
				},
			}
		},
		validate: validateShippoToken,
	}
}

// validateShippoToken rejects tokens whose mode prefix disagrees with the
// selected environment. Tokens without a recognised prefix are accepted.
func validateShippoToken(cred Credential) error {
	token := cred.Secret()
	want := "shippo_" + string(cred.Environment()) + "_"

	for _, env := range []Environment{EnvironmentTest, EnvironmentLive} {
		prefix := "shippo_" + string(env) + "_"
		if strings.HasPrefix(token, prefix) && prefix != want {
			return operation.NewValidationError("Shippo token is a %s token but environment is %s (expected prefix %q)",
				env, cred.Environment(), want)
		}
	}
	return nil
}
