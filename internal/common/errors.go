// Package common defines the sentinel errors shared by the store adapters,
// the services and the command-line layer. Callers should use errors.Is to
// match these values; wrapped errors carry the human-readable detail.
package common

import "errors"

var (
	// ErrInvalidInput marks a malformed or missing field. The caller can
	// always retry with corrected input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationFailed is returned for bad credentials. It never tells
	// an unknown user apart from a wrong password.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnauthenticated is returned when an operation needs a session and
	// none is active.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPermissionDenied is returned when a session exists but lacks rights.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateUsername reports a registration collision.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrNotFound is returned when the referenced user or task does not exist
	// or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable reports that the backing store could not be reached
	// or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")
)
