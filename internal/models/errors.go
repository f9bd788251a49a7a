package models

import "errors"

// Sentinel errors shared by repositories, services and handlers. Wrap them
// with fmt.Errorf("...: %w") to add detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)
