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

package operation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// MaxTransformTimeout bounds evaluation of a single response transform
	MaxTransformTimeout = 1 * time.Second

	// MaxTransformInputSize is the largest payload a transform will accept (10MB)
	MaxTransformInputSize = 10 * 1024 * 1024
)

// TransformResponse applies a jq expression to an output record. An empty
// expression returns the record unchanged. A single result is returned as is;
// multiple results are collected into a slice.
func TransformResponse(ctx context.Context, expression string, response interface{}) (interface{}, error) {
	if expression == "" {
		return response, nil
	}

	code, err := compileTransform(expression)
	if err != nil {
		return nil, NewTransformError(expression, err)
	}

	input, err := normalizeTransformInput(response)
	if err != nil {
		return nil, NewTransformError(expression, err)
	}

	ctx, cancel := context.WithTimeout(ctx, MaxTransformTimeout)
	defer cancel()

	var results []interface{}
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if ctx.Err() != nil {
				return nil, NewTransformError(expression, fmt.Errorf("execution timeout after %v", MaxTransformTimeout))
			}
			return nil, NewTransformError(expression, err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// ValidateTransformExpression reports whether expression compiles.
func ValidateTransformExpression(expression string) error {
	if expression == "" {
		return nil
	}
	if _, err := compileTransform(expression); err != nil {
		return NewTransformError(expression, err)
	}
	return nil
}

func compileTransform(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}
	return code, nil
}

// normalizeTransformInput round-trips the value through JSON so gojq only
// sees the types it understands (float64 numbers, generic maps and slices).
func normalizeTransformInput(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	if len(data) > MaxTransformInputSize {
		return nil, fmt.Errorf("data size (%d bytes) exceeds maximum (%d bytes)", len(data), MaxTransformInputSize)
	}

	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}
