package common

import (
	"fmt"
	"net/http"
)

// AppError represents an application error carrying the HTTP status to render
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// NewInternalServerError creates a 500 error
func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

// NewBadGatewayError creates a 502 error for a failed upstream call
func NewBadGatewayError(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, message, err)
}

// NewServiceUnavailableError creates a 503 error
func NewServiceUnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, nil)
}
