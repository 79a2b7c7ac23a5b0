package operation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestError_MessagePassthrough(t *testing.T) {
	err := NewNotFoundError("Table not found")
	if err.Error() != "Table not found" {
		t.Errorf("expected exact message, got %q", err.Error())
	}

	details := err.Details()
	if !strings.Contains(details, "not_found") {
		t.Errorf("expected type in details, got %q", details)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewUpstreamError("Failed to add row: connection reset", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("item 2: %w", err)
	if !IsType(wrapped, ErrorTypeUpstream) {
		t.Error("expected IsType to see through wrapping")
	}
	if IsType(wrapped, ErrorTypeValidation) {
		t.Error("expected IsType to reject other types")
	}
	if IsType(cause, ErrorTypeUpstream) {
		t.Error("plain errors have no type")
	}
}

func TestNewNotImplementedError(t *testing.T) {
	err := NewNotImplementedError("Table operation '%s' is not yet implemented", "tableCreate")
	if err.Error() != "Table operation 'tableCreate' is not yet implemented" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Type != ErrorTypeNotImplemented {
		t.Errorf("unexpected type %s", err.Type)
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusBadRequest, ErrorTypeUpstream},
		{http.StatusBadGateway, ErrorTypeUpstream},
	}

	for _, tt := range tests {
		if got := ClassifyHTTPStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyHTTPStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	if ErrorMessage(nil) != "" {
		t.Error("expected empty message for nil")
	}
	if ErrorMessage(errors.New("x")) != "x" {
		t.Error("expected message passthrough")
	}
}
