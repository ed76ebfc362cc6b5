package app

import "errors"

// Error kinds returned by gateway operations. Handlers branch on these to
// pick response codes; everything else is treated as an upstream failure.
var (
	// ErrNotFound indicates the named document or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates no valid session backs the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidArgument indicates a precondition failed before any
	// external call was made.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmailTaken indicates the signup email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)
