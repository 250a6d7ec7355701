package errors

// ErrorResponse is the envelope returned for every failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code          string         `json:"code"`
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}
