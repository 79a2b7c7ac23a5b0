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

package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tombee/conductor-glide/internal/credential"
	"github.com/tombee/conductor-glide/internal/operation/transport"
	"github.com/tombee/conductor-glide/internal/secrets"
)

// Connection is a credential resolved from settings and secrets, ready to
// build a transport.
type Connection struct {
	Descriptor *credential.Descriptor
	Credential credential.Credential
	Options    credential.TransportOptions
}

// Connection resolves the credential named by name ("glide", "shippo" or a
// full credential type name). The token is looked up through resolver
// using the configured token reference and checked against the
// descriptor's rules.
func (c *Config) Connection(ctx context.Context, resolver *secrets.Resolver, name string) (*Connection, error) {
	desc, err := credential.Lookup(name)
	if err != nil {
		return nil, err
	}

	var (
		envName  string
		tokenRef string
		opts     credential.TransportOptions
	)
	switch desc.Name {
	case credential.GlideName:
		envName = c.Glide.Environment
		tokenRef = c.Glide.TokenRef
		opts = credential.TransportOptions{
			BaseURL:   c.Glide.BaseURL,
			Timeout:   c.Glide.Timeout,
			RateLimit: c.Glide.RateLimit,
		}
	case credential.ShippoName:
		envName = c.Shippo.Environment
		tokenRef = c.Shippo.TokenRef
		opts = credential.TransportOptions{Timeout: c.Shippo.Timeout}
		if len(c.Shippo.BaseURLs) > 0 {
			overrides := make(map[credential.Environment]string, len(c.Shippo.BaseURLs))
			for env, u := range c.Shippo.BaseURLs {
				overrides[credential.Environment(env)] = u
			}
			desc = desc.WithBaseURLs(overrides)
		}
	default:
		return nil, fmt.Errorf("no settings for credential type %q", desc.Name)
	}

	env, err := credential.ParseEnvironment(envName)
	if err != nil {
		return nil, err
	}

	token, err := resolver.ResolveRef(ctx, tokenRef)
	if err != nil {
		return nil, &ConfigError{
			Key:    "token_ref",
			Reason: fmt.Sprintf("cannot resolve %s token from %q", desc.DisplayName, tokenRef),
			Cause:  err,
		}
	}

	cred := credential.New(token, env)
	if err := desc.Validate(cred); err != nil {
		return nil, err
	}

	return &Connection{
		Descriptor: desc,
		Credential: cred,
		Options:    opts,
	}, nil
}

// Transport builds an authenticated HTTP transport for the connection.
func (c *Connection) Transport(logger *slog.Logger) (*transport.HTTPTransport, error) {
	opts := c.Options
	opts.Logger = logger
	return c.Descriptor.NewTransport(c.Credential, opts)
}
