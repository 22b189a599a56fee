package client

// APIError is a non-2xx backend response. Fields is populated only for
// field-validation failures; Message always holds something user-facing.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsValidation reports whether the error carries per-field messages.
func (e *APIError) IsValidation() bool {
	return len(e.Fields) > 0
}
