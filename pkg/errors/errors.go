// Package errors defines custom error types and error handling utilities for the ESG compliance service.
// This package provides structured error types that map to API error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/esg/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// ESGError represents a structured error with additional metadata
type ESGError interface {
	error

	// Code returns the machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) ESGError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) ESGError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) ESGError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) ESGError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// Is matches errors carrying the same code, so sentinel comparisons work with errors.Is.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	if !ok {
		return false
	}
	return t.code == e.code && t.description == e.description
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new ESGError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) ESGError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrDatabaseOperation is the sentinel wrapped by repositories on driver failures.
var ErrDatabaseOperation = NewError(constants.ErrCodeDatabase, http.StatusInternalServerError, "database operation failed", "")

// ErrCacheOperation is the sentinel wrapped by cache backends on transport failures.
var ErrCacheOperation = NewError(constants.ErrCodeCache, http.StatusInternalServerError, "cache operation failed", "")

// ErrCacheMiss signals a key absent from the cache.
var ErrCacheMiss = NewError(constants.ErrCodeNotFound, http.StatusNotFound, "cache miss", "")

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) ESGError {
	return NewError(constants.ErrCodeInvalidRequest, http.StatusBadRequest, "The request is invalid", message)
}

// ErrNotFound creates a generic not_found error for a resource kind and identifier
func ErrNotFound(resource, id string) ESGError {
	return NewError(constants.ErrCodeNotFound, http.StatusNotFound,
		fmt.Sprintf("%s not found", resource),
		fmt.Sprintf("%s %s not found", resource, id),
	).WithMetadata(resource+"_id", id)
}

// ErrTenantNotFound creates a tenant not found error
func ErrTenantNotFound(tenantID string) ESGError {
	return ErrNotFound("tenant", tenantID)
}

// ErrTaskNotFound creates a task not found error
func ErrTaskNotFound(taskID string) ESGError {
	return ErrNotFound("task", taskID)
}

// ErrAttachmentNotFound creates an attachment not found error
func ErrAttachmentNotFound(attachmentID string) ESGError {
	return ErrNotFound("attachment", attachmentID)
}

// ErrConflict creates a conflict error
func ErrConflict(message string) ESGError {
	return NewError(constants.ErrCodeConflict, http.StatusConflict, "The resource state conflicts with the request", message)
}

// ErrServerError creates an internal server error
func ErrServerError(message string) ESGError {
	return NewError(constants.ErrCodeInternal, http.StatusInternalServerError, "The server encountered an unexpected condition", message)
}

// ErrServiceUnavailable creates a service unavailable error
func ErrServiceUnavailable(message string) ESGError {
	return NewError(constants.ErrCodeServiceUnavailable, http.StatusServiceUnavailable, "The service is temporarily unavailable", message)
}

// ================================================================================
// Helpers
// ================================================================================

// Wrap attaches err as the cause of a new internal error carrying msg.
// Structured errors pass through untouched so their status survives layering.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsESGError(err); ok {
		return err
	}
	return ErrServerError(msg).WithCause(err)
}

// AsESGError extracts an ESGError from the error chain
func AsESGError(err error) (ESGError, bool) {
	var e ESGError
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFoundError reports whether err carries the not_found code
func IsNotFoundError(err error) bool {
	e, ok := AsESGError(err)
	return ok && e.Code() == constants.ErrCodeNotFound
}

// IsInvalidRequest reports whether err carries the invalid_request code
func IsInvalidRequest(err error) bool {
	e, ok := AsESGError(err)
	return ok && e.Code() == constants.ErrCodeInvalidRequest
}

// Is forwards to the standard library so callers only import one errors package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As forwards to the standard library so callers only import one errors package.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// New forwards to the standard library for plain sentinel errors.
func New(text string) error { return stderrors.New(text) }
