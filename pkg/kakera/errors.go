package kakera

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API failure. Code is the server's machine-readable error
// code when one was provided.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 API error. Ownership violations
// surface as 404 as well, so this covers "not yours" and "doesn't exist".
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 API error.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
