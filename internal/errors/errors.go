// Package errors provides structured error handling with kind
// classification, context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error for metrics, result
// annotations and response formatting.
type Kind string

const (
	// KindValidation indicates invalid input at the API boundary (HTTP 400)
	KindValidation Kind = "validation"
	// KindAnalysis indicates content the scorer must reject: empty or
	// over the configured length (HTTP 422)
	KindAnalysis Kind = "analysis"
	// KindTimeout indicates a pipeline stage exceeded its budget (HTTP 504)
	KindTimeout Kind = "timeout"
	// KindDispatch indicates a notification sink exhausted its retries (HTTP 502)
	KindDispatch Kind = "dispatch"
	// KindAggregation indicates a trend bookkeeping failure; never
	// fatal to the ticket's own result (HTTP 500)
	KindAggregation Kind = "aggregation"
	// KindInternal indicates an unexpected server-side error (HTTP 500)
	KindInternal Kind = "internal"
)

// Error represents a structured error with kind, message, and context.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAnalysis:
		return http.StatusUnprocessableEntity
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindDispatch:
		return http.StatusBadGateway
	case KindAggregation, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AnalysisError creates a new analysis error (ticket rejected, no
// downstream effects).
func AnalysisError(message string, cause error) *Error {
	return &Error{Kind: KindAnalysis, Message: message, Cause: cause, Context: make(map[string]any)}
}

// TimeoutError creates a new timeout error (ticket finalized with
// partial data).
func TimeoutError(message string, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Cause: cause, Context: make(map[string]any)}
}

// DispatchError creates a new dispatch error for a sink that exhausted
// its retries.
func DispatchError(message string, cause error) *Error {
	return &Error{Kind: KindDispatch, Message: message, Cause: cause, Context: make(map[string]any)}
}

// AggregationError creates a new trend aggregation error.
func AggregationError(message string, cause error) *Error {
	return &Error{Kind: KindAggregation, Message: message, Cause: cause, Context: make(map[string]any)}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Context: make(map[string]any)}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsKind reports whether err is a structured error of the given kind.
func IsKind(err error, kind Kind) bool {
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Kind == kind
	}
	return false
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    Kind           `json:"kind"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Kind:    e.Kind,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
