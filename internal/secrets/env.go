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

package secrets

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	// EnvBackendPriority is the highest priority so the environment can
	// override stored tokens.
	EnvBackendPriority = 100

	envSecretPrefix = "GLIDECTL_SECRET_"
)

// envAliases maps secret keys to the variables users commonly export.
var envAliases = map[string]string{
	GlideTokenKey:  "GLIDE_API_TOKEN",
	ShippoTokenKey: "SHIPPO_API_TOKEN",
}

// EnvBackend provides read-only access to secrets via environment variables.
// It checks GLIDECTL_SECRET_<KEY> first (e.g. GLIDECTL_SECRET_GLIDE_API_TOKEN
// for "glide/api_token"), then the service alias (GLIDE_API_TOKEN).
type EnvBackend struct {
	lookup  func(string) (string, bool)
	environ func() []string
}

// NewEnvBackend creates a backend reading the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{lookup: os.LookupEnv, environ: os.Environ}
}

// Name returns the backend identifier.
func (e *EnvBackend) Name() string {
	return "env"
}

// Get retrieves a secret from environment variables.
func (e *EnvBackend) Get(ctx context.Context, key string) (string, error) {
	if value, ok := e.lookup(normalizeEnvKey(key)); ok && value != "" {
		return value, nil
	}
	if alias, ok := envAliases[key]; ok {
		if value, ok := e.lookup(alias); ok && value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: environment variable not set", ErrSecretNotFound)
}

// Set returns ErrReadOnlyBackend.
func (e *EnvBackend) Set(ctx context.Context, key string, value string) error {
	return ErrReadOnlyBackend
}

// Delete returns ErrReadOnlyBackend.
func (e *EnvBackend) Delete(ctx context.Context, key string) error {
	return ErrReadOnlyBackend
}

// List returns the keys of all GLIDECTL_SECRET_* variables and of set
// aliases.
func (e *EnvBackend) List(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, env := range e.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || value == "" {
			continue
		}
		if strings.HasPrefix(name, envSecretPrefix) {
			seen[denormalizeEnvKey(name)] = true
		}
	}
	for key, alias := range envAliases {
		if v, ok := e.lookup(alias); ok && v != "" {
			seen[key] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Available returns true; the environment is always readable.
func (e *EnvBackend) Available() bool {
	return true
}

// Priority returns the backend priority.
func (e *EnvBackend) Priority() int {
	return EnvBackendPriority
}

// ReadOnly returns true.
func (e *EnvBackend) ReadOnly() bool {
	return true
}

// normalizeEnvKey converts "glide/api_token" to "GLIDECTL_SECRET_GLIDE_API_TOKEN".
func normalizeEnvKey(key string) string {
	normalized := strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(key))
	return envSecretPrefix + normalized
}

// denormalizeEnvKey converts "GLIDECTL_SECRET_GLIDE_API_TOKEN" back to
// "glide/api_token". Only the first underscore becomes a slash.
func denormalizeEnvKey(envVar string) string {
	key := strings.ToLower(strings.TrimPrefix(envVar, envSecretPrefix))
	if service, rest, ok := strings.Cut(key, "_"); ok {
		return service + "/" + rest
	}
	return key
}
