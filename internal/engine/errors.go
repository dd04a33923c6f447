package engine

import "errors"

var (
	// ErrNotInRepo indicates the current directory is not in a git repository.
	ErrNotInRepo = errors.New("not in a git repository")

	// ErrNotFound indicates an input file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation failed")
)
