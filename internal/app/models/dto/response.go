package dto

import "github.com/yigit/unirecords/internal/pkg/querylog"

// APIResponse is the envelope written for every response, success or failure.
type APIResponse struct {
	Data      any              `json:"data"`
	QueryLogs []querylog.Entry `json:"queryLogs"`
}

// NewAPIResponse wraps data with the statements traced so far. QueryLogs is
// never nil.
func NewAPIResponse(data any, queryLogs []querylog.Entry) APIResponse {
	if queryLogs == nil {
		queryLogs = []querylog.Entry{}
	}
	return APIResponse{Data: data, QueryLogs: queryLogs}
}

// ErrorResponse is the payload of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
