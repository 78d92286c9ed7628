package models

// MessageError is the error envelope written on every non-2xx response.
// Message carries the human-readable summary, Error the underlying cause;
// clients surface whichever is present.
type MessageError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// MessageResponse is the generic success envelope for mutating endpoints
type MessageResponse struct {
	Message string `json:"message"`
}
