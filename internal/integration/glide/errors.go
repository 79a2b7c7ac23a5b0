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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tombee/conductor-glide/internal/operation"
	"github.com/tombee/conductor-glide/internal/operation/transport"
)

// Messages surfaced verbatim to workflow authors.
const (
	msgTableNotFound        = "Table not found"
	msgInvalidSchema        = "Invalid schema structure"
	msgConfirmationRequired = "User confirmation required before fetching rows."
)

// ErrSchemaUnavailable is returned by GetSchema when the service does not
// expose a schema for the table. Callers fall back to inferring columns.
var ErrSchemaUnavailable = errors.New("table schema unavailable")

// ErrInvalidSchema is returned when a schema response has no column list.
var ErrInvalidSchema = operation.NewUpstreamError(msgInvalidSchema, nil)

// translateError converts a transport failure into an operation error,
// using the service's own error message when the body carries one.
func translateError(err error) error {
	te, ok := transport.AsTransportError(err)
	if !ok {
		return operation.NewUpstreamError(err.Error(), err)
	}

	message := te.Message
	if m := serviceMessage(te.Body); m != "" {
		message = m
	}

	errType := operation.ErrorTypeUpstream
	if te.StatusCode > 0 {
		errType = operation.ClassifyHTTPStatus(te.StatusCode)
	}

	return &operation.Error{
		Type:        errType,
		Message:     message,
		StatusCode:  te.StatusCode,
		RequestID:   te.RequestID,
		SuggestText: suggestion(te.StatusCode),
		Cause:       err,
	}
}

// serviceMessage extracts a message from bodies shaped like
// {"error":{"message":"..."}}, {"error":"..."} or {"message":"..."}.
func serviceMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}

	if len(resp.Error) > 0 {
		var s string
		if err := json.Unmarshal(resp.Error, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(resp.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
	}

	return resp.Message
}

func suggestion(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Check the Glide API token and its access to this app"
	case http.StatusTooManyRequests:
		return "Reduce request volume or lower the configured rate limit"
	default:
		return ""
	}
}

// isSchemaUnsupported reports whether a schema request failed because the
// endpoint is not available for the table.
func isSchemaUnsupported(err error) bool {
	te, ok := transport.AsTransportError(err)
	if !ok {
		return false
	}
	switch te.StatusCode {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return true
	}
	return false
}

// wrapUpstream prefixes a failure with the action that caused it,
// e.g. "Failed to add row: <service message>".
func wrapUpstream(action string, err error) error {
	msg := fmt.Sprintf("Failed to %s: %s", action, err.Error())

	var opErr *operation.Error
	if errors.As(err, &opErr) {
		return &operation.Error{
			Type:        operation.ErrorTypeUpstream,
			Message:     msg,
			StatusCode:  opErr.StatusCode,
			RequestID:   opErr.RequestID,
			SuggestText: opErr.SuggestText,
			Cause:       err,
		}
	}
	return operation.NewUpstreamError(msg, err)
}

// ExtractMutationErrors returns the error messages embedded in mutation
// results. Non-string errors are rendered as JSON.
func ExtractMutationErrors(results []MutationResult) []string {
	var errs []string
	for _, r := range results {
		if r == nil {
			continue
		}
		v, ok := r["error"]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString {
			errs = append(errs, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, fmt.Sprint(v))
			continue
		}
		errs = append(errs, string(data))
	}
	return errs
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "; ")
}
