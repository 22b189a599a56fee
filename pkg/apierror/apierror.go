package apierror

import "fmt"

type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// NewValidation builds a per-field validation error. The message is the first
// field's message so single-banner clients still have something to show.
func NewValidation(fields map[string]string, status int) *APIError {
	message := "validation failed"
	for _, v := range fields {
		message = v
		break
	}

	return &APIError{Code: "VALIDATION", Message: message, Fields: fields, HTTPStatus: status}
}
