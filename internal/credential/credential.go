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

// Package credential describes the secrets an integration needs, how they
// are injected into outgoing requests, and how they are validated against
// the remote service.
package credential

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tombee/conductor-glide/internal/log"
)

// Environment selects between sandbox and production hosts.
type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentLive Environment = "live"
)

// ParseEnvironment parses an environment name. Empty input defaults to test.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case "", EnvironmentTest:
		return EnvironmentTest, nil
	case EnvironmentLive:
		return EnvironmentLive, nil
	default:
		return "", fmt.Errorf("invalid environment %q (must be test or live)", s)
	}
}

// Credential is a resolved secret plus its environment. It is immutable and
// never renders its secret through fmt or slog.
type Credential struct {
	secret      string
	environment Environment
}

// New creates a credential. An empty environment defaults to test.
func New(secret string, env Environment) Credential {
	if env == "" {
		env = EnvironmentTest
	}
	return Credential{secret: secret, environment: env}
}

// Secret returns the raw secret for injection into a request.
func (c Credential) Secret() string {
	return c.secret
}

// Environment returns the credential environment.
func (c Credential) Environment() Environment {
	return c.environment
}

// IsZero reports whether no secret was supplied.
func (c Credential) IsZero() bool {
	return c.secret == ""
}

// String implements fmt.Stringer with the secret redacted.
func (c Credential) String() string {
	return fmt.Sprintf("credential(%s, %s)", c.environment, log.SanitizeSecret(c.secret))
}

// GoString keeps %#v from printing the secret.
func (c Credential) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("environment", string(c.environment)),
		slog.String("secret", log.SanitizeSecret(c.secret)),
	)
}
