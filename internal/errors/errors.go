package apierrors

import "fmt"

// APIError is a failure with a stable string code surfaced to the caller.
type APIError struct {
	Status int
	Code   string
}

func NewAPIError(status int, code string) *APIError {
	return &APIError{Status: status, Code: code}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Code)
}
