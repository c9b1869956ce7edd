package store

import "errors"

// Sentinel errors returned by every backend.
// Services translate them into domain errors; they never reach the boundary.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrConflict      = errors.New("transaction conflict: retries exhausted")
)
