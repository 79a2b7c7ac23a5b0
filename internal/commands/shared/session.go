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

package shared

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tombee/conductor-glide/internal/config"
	"github.com/tombee/conductor-glide/internal/integration"
	"github.com/tombee/conductor-glide/internal/integration/glide"
	"github.com/tombee/conductor-glide/internal/log"
	"github.com/tombee/conductor-glide/internal/operation/api"
	"github.com/tombee/conductor-glide/internal/secrets"
	"github.com/tombee/conductor-glide/internal/tracing"
)

// ServiceName identifies glidectl in traces.
const ServiceName = "glidectl"

// Session holds what a command needs to talk to the services: loaded
// configuration, logger, secret resolver and tracer provider.
type Session struct {
	Config   *config.Config
	Logger   *slog.Logger
	Resolver *secrets.Resolver
	Tracing  *tracing.Provider
}

// NewSession loads configuration from --config (or the default settings
// file) and sets up logging and tracing. Callers must Close the session.
func NewSession(ctx context.Context) (*Session, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}

	logCfg := cfg.LoggerConfig()
	if GetVerbose() {
		logCfg.Level = "debug"
	}
	logger := log.New(logCfg)
	slog.SetDefault(logger)

	tracingCfg := cfg.Tracing
	tracingCfg.ServiceName = ServiceName
	tracingCfg.Version = version
	tp, err := tracing.Setup(ctx, tracingCfg)
	if err != nil {
		return nil, NewConfigError("failed to set up tracing", err)
	}

	return &Session{
		Config:   cfg,
		Logger:   logger,
		Resolver: secrets.NewResolver(secrets.NewEnvBackend(), secrets.NewKeychainBackend()),
		Tracing:  tp,
	}, nil
}

// Close flushes pending spans.
func (s *Session) Close(ctx context.Context) error {
	return s.Tracing.Shutdown(ctx)
}

// Connection resolves the named credential ("glide" or "shippo").
func (s *Session) Connection(ctx context.Context, name string) (*config.Connection, error) {
	conn, err := s.Config.Connection(ctx, s.Resolver, name)
	if err != nil {
		return nil, NewCredentialError(fmt.Sprintf("cannot use %s credential", name), err)
	}
	return conn, nil
}

// Glide builds a Glide integration authenticated with the configured
// token.
func (s *Session) Glide(ctx context.Context) (*glide.Integration, error) {
	conn, err := s.Connection(ctx, "glide")
	if err != nil {
		return nil, err
	}

	tr, err := conn.Transport(log.WithComponent(s.Logger, "transport"))
	if err != nil {
		return nil, NewCredentialError("failed to create transport", err)
	}

	c, err := integration.New(glide.Name, &api.ProviderConfig{
		Transport: tr,
		BaseURL:   tr.BaseURL(),
		Logger:    s.Logger,
	})
	if err != nil {
		return nil, err
	}
	g, ok := c.(*glide.Integration)
	if !ok {
		return nil, fmt.Errorf("unexpected connector type %T for %s", c, glide.Name)
	}
	return g, nil
}
