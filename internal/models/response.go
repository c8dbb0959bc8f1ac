// Package models holds the HTTP response shapes shared by handlers and middleware.
package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"` // healthy, degraded
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Source    string `json:"source"` // ok or the ping error
}

// MethodsResponse lists the registered forecast methods
type MethodsResponse struct {
	Methods []string `json:"methods"`
	Default string   `json:"default"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewError builds an ErrorResponse
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}
