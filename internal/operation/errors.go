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
	"fmt"
	"net/http"
)

// ErrorType classifies operation errors for appropriate handling.
type ErrorType string

const (
	// ErrorTypeValidation indicates a missing or invalid parameter
	// (malformed JSON row payload, missing app or table id).
	ErrorTypeValidation ErrorType = "validation_error"

	// ErrorTypeNotFound indicates a table or row does not exist
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeNotImplemented indicates a declared-but-unimplemented operation
	// or an operation/resource combination with no handler
	ErrorTypeNotImplemented ErrorType = "not_implemented"

	// ErrorTypeUpstream wraps any failure reported by the remote service
	ErrorTypeUpstream ErrorType = "upstream_error"

	// ErrorTypeAuth indicates the remote service rejected the credential (401, 403)
	ErrorTypeAuth ErrorType = "auth_error"

	// ErrorTypeRateLimit indicates rate limit exceeded (429)
	ErrorTypeRateLimit ErrorType = "rate_limited"

	// ErrorTypeTransform indicates response transform failure
	ErrorTypeTransform ErrorType = "transform_error"
)

// Error represents an operation execution error with classification.
type Error struct {
	// Type classifies the error
	Type ErrorType

	// Message is the human-readable error description. Error() returns it
	// unchanged so callers and tests can rely on exact messages.
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// SuggestText provides guidance on how to resolve the error.
	SuggestText string

	// RequestID from the external service
	RequestID string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Details renders the error with its classification, for logs.
func (e *Error) Details() string {
	msg := fmt.Sprintf("%s (type: %s)", e.Message, e.Type)

	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}

	if e.RequestID != "" {
		msg = fmt.Sprintf("%s (request-id: %s)", msg, e.RequestID)
	}

	return msg
}

// IsUserVisible reports that operation errors are always safe to show.
func (e *Error) IsUserVisible() bool {
	return true
}

// Suggestion returns actionable guidance for resolving the error.
func (e *Error) Suggestion() string {
	return e.SuggestText
}

// IsType reports whether err (or anything it wraps) is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Type == t
	}
	return false
}

// NewValidationError creates an error for a missing or invalid parameter.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{
		Type:        ErrorTypeValidation,
		Message:     fmt.Sprintf(format, args...),
		SuggestText: "Check the node parameters",
	}
}

// NewNotFoundError creates an error for an absent table or row.
func NewNotFoundError(message string) *Error {
	return &Error{
		Type:        ErrorTypeNotFound,
		Message:     message,
		SuggestText: "Verify the resource exists and the id or name is correct",
	}
}

// NewNotImplementedError creates an error for an operation with no handler.
func NewNotImplementedError(format string, args ...interface{}) *Error {
	return &Error{
		Type:    ErrorTypeNotImplemented,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewUpstreamError wraps a failure from the remote service. The message is
// passed through as given.
func NewUpstreamError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeUpstream,
		Message: message,
		Cause:   cause,
	}
}

// NewTransformError creates an error for response transform failures.
func NewTransformError(expression string, cause error) *Error {
	msg := fmt.Sprintf("response transform failed: %s", expression)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &Error{
		Type:        ErrorTypeTransform,
		Message:     msg,
		Cause:       cause,
		SuggestText: "Check jq expression syntax and ensure it matches the response structure",
	}
}

// ClassifyHTTPStatus maps an HTTP status code from the remote service onto
// an error type.
func ClassifyHTTPStatus(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	default:
		return ErrorTypeUpstream
	}
}

// ErrorMessage returns the message of err suitable for an output record.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
