package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error carrying the HTTP status it should surface as.
// Stores return the sentinel values below; the HTTP layer maps them via
// HTTPCode without knowing which store produced them.
type Error struct {
	Code    int
	Message string
	Err     error // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// Sentinel errors. Compared with errors.Is throughout the services, so
// stores must return these values rather than fresh copies.
var (
	// ErrNotFound covers missing users, projects, entries, sessions and
	// unknown share tokens alike. Callers decide whether that means 404
	// or, for share lookups, a deliberately vague response.
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	// ErrAlreadyExists signals an ID or unique-column collision, such as
	// a duplicate email at registration.
	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}
)
