package apperrors

import (
	"errors"
	"net/http"

	"contractai-backend/internal/shared/metrics"
	"contractai-backend/internal/shared/telemetry"
)

// Kind is the closed set of error categories. Each kind carries a fixed HTTP
// status; the boundary layer dispatches on the kind name, not on types.
type Kind string

const (
	KindApp                Kind = "AppError"
	KindValidation         Kind = "ValidationError"
	KindAuthentication     Kind = "AuthenticationError"
	KindAuthorization      Kind = "AuthorizationError"
	KindNotFound           Kind = "NotFoundError"
	KindLLM                Kind = "LLMError"
	KindDocumentProcessing Kind = "DocumentProcessingError"
	KindDatabase           Kind = "DatabaseError"
	KindStorage            Kind = "StorageError"
	KindConfiguration      Kind = "ConfigurationError"
)

// Error is a domain failure with a transport-ready status code and a
// structured details map.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// Response pairs a status code with a serialized error body for the boundary
// layer.
type Response struct {
	Status int            `json:"status"`
	Body   map[string]any `json:"body"`
}

// New constructs a base AppError with an explicit status code. Every
// constructor logs the error at error level; failures are never silently
// swallowed even if the caller discards the value.
func New(message string, status int, details map[string]any) *Error {
	return construct(KindApp, message, status, details)
}

// Validation reports invalid client input (400).
func Validation(message string, details map[string]any) *Error {
	return construct(KindValidation, message, http.StatusBadRequest, details)
}

// Authentication reports a failed identity check (401).
func Authentication(message string, details map[string]any) *Error {
	return construct(KindAuthentication, message, http.StatusUnauthorized, details)
}

// Authorization reports an access denial (403).
func Authorization(message string, details map[string]any) *Error {
	return construct(KindAuthorization, message, http.StatusForbidden, details)
}

// NotFound reports a missing resource (404).
func NotFound(message string, details map[string]any) *Error {
	return construct(KindNotFound, message, http.StatusNotFound, details)
}

// LLM reports an LLM provider failure (503, retriable).
func LLM(message string, details map[string]any) *Error {
	return construct(KindLLM, message, http.StatusServiceUnavailable, details)
}

// DocumentProcessing reports a document pipeline failure (500, not retriable).
func DocumentProcessing(message string, details map[string]any) *Error {
	return construct(KindDocumentProcessing, message, http.StatusInternalServerError, details)
}

// Database reports a database failure (503, transient).
func Database(message string, details map[string]any) *Error {
	return construct(KindDatabase, message, http.StatusServiceUnavailable, details)
}

// Storage reports an object storage failure (503, transient).
func Storage(message string, details map[string]any) *Error {
	return construct(KindStorage, message, http.StatusServiceUnavailable, details)
}

// Configuration reports an invalid configuration. Callers treat it as
// startup-fatal.
func Configuration(message string, details map[string]any) *Error {
	return construct(KindConfiguration, message, http.StatusInternalServerError, details)
}

// FromErr returns err as *Error if it already is one, otherwise wraps it as a
// base AppError (500). Already-typed errors are returned as-is so they are not
// logged twice.
func FromErr(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(err.Error(), http.StatusInternalServerError, nil)
}

func construct(kind Kind, message string, status int, details map[string]any) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if details == nil {
		details = map[string]any{}
	}
	e := &Error{
		Kind:    kind,
		Message: message,
		Status:  status,
		Details: details,
	}
	// Log at the throw site: the raise is the observable event, not the render.
	telemetry.Error(string(kind), map[string]any{
		"message": message,
		"status":  status,
		"details": details,
	})
	metrics.IncError(string(kind))
	return e
}

// Dict serializes the error as the API body: {error, message, details}.
func (e *Error) Dict() map[string]any {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	return map[string]any{
		"error":   string(e.Kind),
		"message": e.Message,
		"details": details,
	}
}

// Response converts the error to the transport contract consumed by the
// boundary layer.
func (e *Error) Response() Response {
	return Response{
		Status: e.Status,
		Body:   e.Dict(),
	}
}
