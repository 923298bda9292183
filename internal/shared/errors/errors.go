// Package errors provides application-level error types returned across the usecase
// boundary. Each AppError carries the HTTP status and a stable machine code that
// clients switch on.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeUnavailable  ErrorType = "service_unavailable"
	ErrorTypeBadRequest   ErrorType = "bad_request"
)

// Machine-readable error codes exposed in API responses.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInternal               = "INTERNAL_ERROR"
	CodeAddressPoolEmpty       = "ADDRESS_POOL_EMPTY"
	CodeReservationFailed      = "RESERVATION_FAILED"
	CodeMaxRetriesExceeded     = "MAX_RETRIES_EXCEEDED"
	CodeDerivationFailed       = "DERIVATION_FAILED"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeDeliveryFailed         = "DELIVERY_FAILED"
	CodePriceUnavailable       = "PRICE_UNAVAILABLE"
	CodeConflict               = "CONFLICT"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	ErrCode string    `json:"code"`
	Message string    `json:"message"`
	Code    int       `json:"-"`
	Details string    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.ErrCode, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

// Unwrap exposes the domain error the AppError was built from.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause records the underlying error so errors.Is keeps working across the boundary.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func newAppError(t ErrorType, code string, status int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		ErrCode: code,
		Message: message,
		Code:    status,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, CodeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, CodeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, CodeConflict, http.StatusConflict, message, details)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, CodeUnauthorized, http.StatusUnauthorized, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, CodeInternal, http.StatusInternalServerError, message, details)
}

// NewPoolExhaustedError is returned when no address can be handed out. Callers
// should not retry immediately; an operator has to seed or activate a key.
func NewPoolExhaustedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnavailable, CodeAddressPoolEmpty, http.StatusServiceUnavailable, message, details)
}

// NewReservationFailedError covers storage failures while reserving an address.
func NewReservationFailedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, CodeReservationFailed, http.StatusInternalServerError, message, details)
}

// NewMaxRetriesExceededError is returned once the allocator gave up on contention.
func NewMaxRetriesExceededError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, CodeMaxRetriesExceeded, http.StatusInternalServerError, message, details)
}

// NewDerivationError signals broken key material, a configuration bug.
func NewDerivationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, CodeDerivationFailed, http.StatusInternalServerError, message, details)
}

// NewInvalidStateTransitionError rejects a transition the state machine forbids.
func NewInvalidStateTransitionError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, CodeInvalidStateTransition, http.StatusBadRequest, message, details)
}

// NewPriceUnavailableError is returned when no exchange rate source answered.
func NewPriceUnavailableError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnavailable, CodePriceUnavailable, http.StatusServiceUnavailable, message, details)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err is an AppError with the given machine code.
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.ErrCode == code
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "duplicate key")
}
