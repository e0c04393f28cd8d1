package httpx

import (
	"errors"
	"net/http"

	"github.com/servify/servify-dashboard/internal/shared"
)

// Client-facing messages. Internal detail never reaches the response body.
const (
	MsgBadRequest         = "Email and password are required"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthorized       = "Access token required"
	MsgForbidden          = "Invalid or expired token"
	MsgNotFound           = "Route not found"
	MsgInternal           = "Internal server error"
)

// StatusFor maps a domain error to its HTTP status and message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrBadRequest):
		return http.StatusBadRequest, MsgBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized, MsgInvalidCredentials
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized, MsgUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, MsgForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	status, msg := StatusFor(err)
	Error(w, status, msg)
}
