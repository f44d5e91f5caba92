package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrFetch             = errors.New("fetch failed")
	ErrMutation          = errors.New("mutation failed")
	ErrConflict          = errors.New("version conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid transition")
)
