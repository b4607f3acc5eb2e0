package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/leadflow/leadflow-backend/pkg/i18n"
)

// Standard error types
var (
	ErrNotFound   = errors.New("resource not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("resource conflict")
	ErrInternal   = errors.New("internal server error")
	ErrValidation = errors.New("validation error")

	// ErrInvalidCriteria means a duplicate check was requested with no match criterion selected.
	ErrInvalidCriteria = errors.New("at least one match criterion is required")
	// ErrInvalidHistoryEntry means an ownership history event could not be parsed.
	ErrInvalidHistoryEntry = errors.New("invalid ownership history entry")
	// ErrDeleteFailed means the lead store rejected a duplicate deletion.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrInvalidState means a workflow transition was requested from the wrong state.
	ErrInvalidState = errors.New("invalid workflow state")
	// ErrUpstream means an external collaborator (registry) failed.
	ErrUpstream = errors.New("upstream service error")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	MessageKey string            `json:"-"`
	Params     map[string]string `json:"-"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Localize returns the message in the locale stored in ctx
func (e *AppError) Localize(ctx context.Context) string {
	if e.MessageKey == "" {
		return e.Message
	}
	params := e.Params
	if resource, ok := params["resource"]; ok {
		params = make(map[string]string, len(e.Params))
		for k, v := range e.Params {
			params[k] = v
		}
		if name := i18n.TFromContext(ctx, "resources."+resource); name != "resources."+resource {
			params["resource"] = name
		}
	}
	return i18n.TFromContext(ctx, e.MessageKey, params)
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func newKeyed(sentinel error, code, key string, status int, params map[string]string) *AppError {
	return &AppError{
		Err:        sentinel,
		Code:       code,
		Message:    i18n.T(key, params),
		MessageKey: key,
		Params:     params,
		StatusCode: status,
	}
}

// withMessage replaces the catalog message with a caller-supplied one,
// which is then shown as is in every locale
func withMessage(e *AppError, message string) {
	if message == "" {
		return
	}
	e.Message = message
	e.MessageKey = ""
}

// Common error constructors

func NotFound(resource string) *AppError {
	return newKeyed(ErrNotFound, "NOT_FOUND", "errors.not_found", http.StatusNotFound,
		map[string]string{"resource": resource})
}

func BadRequest(message string) *AppError {
	e := newKeyed(ErrBadRequest, "BAD_REQUEST", "errors.bad_request", http.StatusBadRequest, nil)
	withMessage(e, message)
	return e
}

func Conflict(message string) *AppError {
	e := newKeyed(ErrConflict, "CONFLICT", "errors.conflict", http.StatusConflict, nil)
	withMessage(e, message)
	return e
}

func Internal(message string) *AppError {
	e := newKeyed(ErrInternal, "INTERNAL_ERROR", "errors.internal", http.StatusInternalServerError, nil)
	withMessage(e, message)
	return e
}

func Validation(details map[string]string) *AppError {
	e := newKeyed(ErrValidation, "VALIDATION_ERROR", "errors.validation_failed", http.StatusBadRequest, nil)
	e.Details = details
	return e
}

// Domain error constructors

// InvalidCriteria reports a duplicate check with no criterion selected
func InvalidCriteria() *AppError {
	return newKeyed(ErrInvalidCriteria, "INVALID_CRITERIA", "errors.invalid_criteria", http.StatusBadRequest, nil)
}

// InvalidHistoryEntry reports an unparseable ownership event at index
func InvalidHistoryEntry(index int, value string, cause error) *AppError {
	params := map[string]string{"index": strconv.Itoa(index), "value": value}
	e := newKeyed(ErrInvalidHistoryEntry, "INVALID_HISTORY_ENTRY", "errors.invalid_history_entry",
		http.StatusUnprocessableEntity, params)
	e.Details = params
	if cause != nil {
		e.Err = fmt.Errorf("%w: %v", ErrInvalidHistoryEntry, cause)
	}
	return e
}

// DeleteFailed reports that the lead store could not delete duplicates
func DeleteFailed(cause error) *AppError {
	e := newKeyed(ErrDeleteFailed, "DELETE_FAILED", "errors.delete_failed", http.StatusBadGateway, nil)
	if cause != nil {
		e.Err = fmt.Errorf("%w: %v", ErrDeleteFailed, cause)
	}
	return e
}

// InvalidState reports a workflow operation attempted in the wrong state
func InvalidState(state string) *AppError {
	return newKeyed(ErrInvalidState, "INVALID_STATE", "errors.invalid_state", http.StatusConflict,
		map[string]string{"state": state})
}

// Upstream reports a failed call to an external collaborator
func Upstream(cause error) *AppError {
	e := newKeyed(ErrUpstream, "REGISTRY_UNAVAILABLE", "errors.registry_unavailable", http.StatusBadGateway, nil)
	if cause != nil {
		e.Err = fmt.Errorf("%w: %v", ErrUpstream, cause)
	}
	return e
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
