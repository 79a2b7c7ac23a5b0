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

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-glide/internal/log"
	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/tracing"
)

// Request is one node execution.
type Request struct {
	// Resource and Operation select the handler.
	Resource  string
	Operation string

	// Parameters are the node parameters shared by every item.
	Parameters map[string]interface{}

	// Items are the input records. An empty list runs the operation once.
	Items []Item
}

// ItemError reports the item that aborted a run.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Err.Error())
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Runner executes a connector operation item by item.
type Runner struct {
	connector      operation.Connector
	logger         *slog.Logger
	tracer         trace.Tracer
	continueOnFail bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTracer sets the tracer used for run and item spans.
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// WithContinueOnFail records item failures as {"error": msg} outputs
// instead of aborting the run.
func WithContinueOnFail(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.continueOnFail = enabled
	}
}

// NewRunner creates a runner for connector.
func NewRunner(connector operation.Connector, opts ...RunnerOption) *Runner {
	r := &Runner{
		connector: connector,
		logger:    slog.Default(),
		tracer:    tracing.Tracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the request and returns one output item per input item, in
// input order. Items are processed sequentially. Without continue-on-fail
// the first failure stops the run and is returned as an *ItemError.
func (r *Runner) Run(ctx context.Context, req Request) ([]Item, error) {
	items := req.Items
	if len(items) == 0 {
		items = []Item{NewItem(nil)}
	}

	runID := uuid.New().String()
	logger := log.WithOperation(log.WithRunContext(r.logger, runID), req.Resource, req.Operation)
	mw := log.NewItemMiddleware(logger, r.continueOnFail)

	ctx, runSpan := tracing.StartRun(ctx, r.tracer, runID, req.Resource, req.Operation, len(items))
	defer runSpan.End()

	outputs := make([]Item, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			runSpan.RecordError(err)
			return nil, &ItemError{Index: i, Err: err}
		}

		inputs := item.merge(req.Parameters)
		if req.Resource != "" {
			inputs["resource"] = req.Resource
		}

		ev := &log.ItemEvent{
			Resource:  req.Resource,
			Operation: req.Operation,
			Index:     i,
		}

		var out Item
		err := mw.Handle(ev, func() error {
			itemCtx, span := tracing.StartItem(ctx, r.tracer, i, req.Operation)
			defer span.End()

			result, err := r.connector.Execute(itemCtx, req.Operation, inputs)
			if err != nil {
				span.RecordError(err)
				return err
			}
			out = NewItem(result.GetResponse())
			return nil
		})

		if err != nil {
			if !r.continueOnFail {
				runSpan.RecordError(err)
				return nil, &ItemError{Index: i, Err: err}
			}
			out = ErrorItem(err)
		}
		outputs = append(outputs, out)
	}

	runSpan.SetAttributes(map[string]any{"glide.outputs": len(outputs)})
	return outputs, nil
}
