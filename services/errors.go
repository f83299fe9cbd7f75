package services

import "errors"

// Protocol violations are returned synchronously and leave state untouched.
// Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrGameEnded          = errors.New("game already ended")
)
