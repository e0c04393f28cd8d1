package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest indicates required request fields are missing or malformed.
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates no access token was presented.
	ErrUnauthorized = errors.New("access token required")
	// ErrForbidden indicates the presented token is invalid or expired.
	ErrForbidden = errors.New("invalid or expired token")
	// ErrDependency wraps datastore and cache failures.
	ErrDependency = errors.New("dependency failure")
)
