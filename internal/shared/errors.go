package shared

import "errors"

var (
	// ErrUnauthenticated indicates a missing or rejected credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrProfileNotFound indicates a valid credential with no account record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrForbidden indicates a role or permission check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)
