package ehclient

import (
	"errors"
	"fmt"
)

// ErrParse indicates the API answered 2xx but the body carried no usable token.
var ErrParse = errors.New("ehclient: unexpected response body")

// APIError is an error reported by the API itself in the "error" field.
type APIError struct {
	Method  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ehclient: %s: %s", e.Method, e.Message)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ehclient: http status %d", e.Code)
}

// IsAPIError reports whether err wraps an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
