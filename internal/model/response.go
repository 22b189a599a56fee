package model

// ErrorResponse follows the backend's error contract so the web console can
// treat gateway errors and backend errors identically: field-validation
// failures arrive under "errors", everything else under "error".
type ErrorResponse struct {
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}
