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

package log

import (
	"log/slog"
	"time"
)

// ItemEvent describes one input item being dispatched.
type ItemEvent struct {
	// Resource is the node resource ("table" or "row").
	Resource string

	// Operation is the node operation name.
	Operation string

	// Index is the zero-based item position.
	Index int

	// Metadata contains additional fields (app id, table).
	Metadata map[string]interface{}
}

// ItemOutcome describes how an item finished.
type ItemOutcome struct {
	// Success indicates whether the operation succeeded.
	Success bool

	// Error is the error message if the operation failed.
	Error string

	// Captured is true when the failure was recorded in the item's output
	// instead of aborting the run.
	Captured bool

	// DurationMs is the duration of the operation in milliseconds.
	DurationMs int64
}

// LogItemStart logs the start of an item's operation at debug level.
func LogItemStart(logger *slog.Logger, ev *ItemEvent) {
	attrs := []any{
		EventKey, "item_start",
		ResourceKey, ev.Resource,
		OperationKey, ev.Operation,
		ItemIndexKey, ev.Index,
	}
	for k, v := range ev.Metadata {
		attrs = append(attrs, k, v)
	}
	logger.Debug("dispatching item", attrs...)
}

// LogItemOutcome logs the result of an item's operation. Failures that abort
// the run are logged at error level, captured failures at warn.
func LogItemOutcome(logger *slog.Logger, ev *ItemEvent, out *ItemOutcome) {
	attrs := []any{
		EventKey, "item_done",
		ResourceKey, ev.Resource,
		OperationKey, ev.Operation,
		ItemIndexKey, ev.Index,
		DurationKey, out.DurationMs,
		"success", out.Success,
	}
	if out.Error != "" {
		attrs = append(attrs, "error", out.Error)
	}

	switch {
	case out.Success:
		logger.Debug("item completed", attrs...)
	case out.Captured:
		logger.Warn("item failed, continuing", attrs...)
	default:
		logger.Error("item failed", attrs...)
	}
}

// ItemMiddleware wraps per-item work with start and outcome logging.
type ItemMiddleware struct {
	logger         *slog.Logger
	continueOnFail bool
}

// NewItemMiddleware creates a new item logging middleware.
func NewItemMiddleware(logger *slog.Logger, continueOnFail bool) *ItemMiddleware {
	return &ItemMiddleware{
		logger:         logger,
		continueOnFail: continueOnFail,
	}
}

// Handle runs fn for the item and logs around it. The error from fn is
// returned unchanged.
func (m *ItemMiddleware) Handle(ev *ItemEvent, fn func() error) error {
	start := time.Now()
	LogItemStart(m.logger, ev)

	err := fn()

	out := &ItemOutcome{
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		out.Error = err.Error()
		out.Captured = m.continueOnFail
	}
	LogItemOutcome(m.logger, ev, out)

	return err
}
