// Package services provides the business logic layer between handlers and the data source.
// Services validate requests, orchestrate caching, loading and analytics, and emit events.
package services

import (
	"errors"
)

// Error codes returned to API clients
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidMethod     = "INVALID_METHOD"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// AsServiceError extracts a *ServiceError from an error chain
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func invalidRequest(message string, details map[string]interface{}) *ServiceError {
	return NewServiceErrorWithDetails(ErrCodeInvalidRequest, message, details)
}

func sourceUnavailable(op string, err error) *ServiceError {
	return NewServiceErrorWithDetails(ErrCodeSourceUnavailable, "Failed to load "+op, map[string]interface{}{
		"error": err.Error(),
	})
}
