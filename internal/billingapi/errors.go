package billingapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx reply from the billing API.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server-supplied explanation, empty when the body had none.
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billing api %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("billing api %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusCode returns the upstream HTTP status carried by err, or 0 for
// transport failures and unrelated errors.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// MessageOr returns the server message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return fallback
}

// errorBody reads only message. The sibling error field of a Spring error
// body is an English reason phrase ("Not Found"), never operator text.
type errorBody struct {
	Message string `json:"message"`
}

func (b errorBody) text() string {
	return strings.TrimSpace(b.Message)
}
