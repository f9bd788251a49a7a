package services

import (
	"errors"
	"fmt"

	"training_tracker/internal/models"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, models.ErrNotFound)
}

// named turns a bare not-found from a store into "<what> not found".
func named(err error, what string) error {
	if errors.Is(err, models.ErrNotFound) {
		return notFound(what)
	}
	return err
}
