package service

import "errors"

// Client-facing error taxonomy. The HTTP layer maps each sentinel to a
// fixed status and a generic message; anything outside the taxonomy is
// reported as an internal failure without detail.
var (
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("not found")
	ErrUnverified         = errors.New("email not verified")
	ErrInactive           = errors.New("account inactive")
)
