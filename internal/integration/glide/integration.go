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

package glide

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

// Name is the connector name used in registries and metrics.
const Name = "glide"

// Resources accepted by Execute.
const (
	ResourceTable = "table"
	ResourceRow   = "row"
)

// Integration implements the Glide tables node. It satisfies
// operation.Connector, api.TypedProvider and api.OptionLoader.
type Integration struct {
	svc    TablesService
	logger *slog.Logger
}

// New creates an integration backed by svc.
func New(svc TablesService, logger *slog.Logger) *Integration {
	if logger == nil {
		logger = slog.Default()
	}
	return &Integration{
		svc:    svc,
		logger: logger.With("component", Name),
	}
}

// NewGlideIntegration creates an integration that talks to the Glide API
// through config.Transport.
func NewGlideIntegration(config *api.ProviderConfig) (operation.Connector, error) {
	svc, err := NewHTTPService(config)
	if err != nil {
		return nil, err
	}
	return New(svc, config.Logger), nil
}

// Name returns the connector identifier.
func (g *Integration) Name() string {
	return Name
}

// Service returns the underlying tables service.
func (g *Integration) Service() TablesService {
	return g.svc
}

// Execute runs one operation for one input item. The resource is taken
// from the "resource" input, or derived from the operation name when
// absent. An optional "responseTransform" jq expression reshapes the
// output record.
func (g *Integration) Execute(ctx context.Context, op string, inputs map[string]interface{}) (*operation.Result, error) {
	p := params(inputs)
	resource := p.string(ParamResource)
	if resource == "" {
		resource = resourceOf(op)
	}

	start := time.Now()
	result, err := g.dispatch(ctx, resource, op, p)
	if err == nil {
		result, err = g.transform(ctx, p, result)
	}
	operation.RecordOperation(resource, op, err, time.Since(start))

	if err != nil {
		g.logger.Debug("operation failed",
			"resource", resource,
			"operation", op,
			"error", err)
		return nil, err
	}
	return result, nil
}

func (g *Integration) transform(ctx context.Context, p params, result *operation.Result) (*operation.Result, error) {
	expr := p.string(ParamResponseTransform)
	if expr == "" || result == nil {
		return result, nil
	}

	out, err := operation.TransformResponse(ctx, expr, result.Response)
	if err != nil {
		return nil, err
	}

	shaped, ok := out.(map[string]interface{})
	if !ok {
		shaped = map[string]interface{}{"result": out}
	}
	result.RawResponse = result.Response
	result.Response = shaped
	return result, nil
}

// resourceOf derives the resource from an operation name such as
// "rowCreate" or "tableGetAll".
func resourceOf(op string) string {
	switch {
	case strings.HasPrefix(op, ResourceTable):
		return ResourceTable
	case strings.HasPrefix(op, ResourceRow):
		return ResourceRow
	default:
		return ""
	}
}
