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

package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glide_http_request_duration_seconds",
			Help:    "Duration of outbound API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "operation"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glide_http_requests_total",
			Help: "Total outbound API requests by status code",
		},
		[]string{"method", "operation", "status"},
	)

	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glide_http_request_errors_total",
			Help: "Total failed outbound API requests by error type",
		},
		[]string{"operation", "error_type"},
	)
)

// recordRequest records metrics for a single request attempt.
func recordRequest(req *Request, resp *Response, err error, duration time.Duration) {
	operation := "unknown"
	if req != nil {
		if op, ok := req.Metadata[MetadataOperation].(string); ok && op != "" {
			operation = op
		}
	}

	method := ""
	if req != nil {
		method = req.Method
	}

	requestDuration.WithLabelValues(method, operation).Observe(duration.Seconds())

	status := "error"
	switch {
	case resp != nil:
		status = strconv.Itoa(resp.StatusCode)
	case err != nil:
		if te, ok := AsTransportError(err); ok {
			if te.StatusCode != 0 {
				status = strconv.Itoa(te.StatusCode)
			}
			requestErrors.WithLabelValues(operation, string(te.Type)).Inc()
		}
	}
	requestsTotal.WithLabelValues(method, operation, status).Inc()
}
