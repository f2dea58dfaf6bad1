package model

// ErrorDetail provides field-level context for an error response.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
}
