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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glide_operation_duration_seconds",
			Help:    "Duration of node operations per item",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "operation"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glide_operations_total",
			Help: "Total node operations by outcome",
		},
		[]string{"resource", "operation", "outcome"},
	)

	optionLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glide_option_loads_total",
			Help: "Total dropdown option loads by method and outcome",
		},
		[]string{"method", "outcome"},
	)
)

// RecordOperation records the outcome of one operation on one item.
// The outcome label is "success" or the error type.
func RecordOperation(resource, op string, err error, duration time.Duration) {
	operationDuration.WithLabelValues(resource, op).Observe(duration.Seconds())
	operationsTotal.WithLabelValues(resource, op, outcomeLabel(err)).Inc()
}

// RecordOptionLoad records a dropdown option load. failed is true when the
// loader fell back to an error option.
func RecordOptionLoad(method string, failed bool) {
	outcome := "success"
	if failed {
		outcome = "error"
	}
	optionLoadsTotal.WithLabelValues(method, outcome).Inc()
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return string(opErr.Type)
	}
	return "error"
}
