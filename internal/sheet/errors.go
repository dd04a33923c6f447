package sheet

import "errors"

var (
	// ErrUnknownState indicates a state name absent from the catalogue.
	ErrUnknownState = errors.New("unknown state")

	// ErrDuplicateState indicates a state name repeated within one sheet.
	ErrDuplicateState = errors.New("duplicate state")

	// ErrOutOfRange indicates a direction or frame the state does not have.
	ErrOutOfRange = errors.New("direction or frame out of range")

	// ErrRectOutOfBounds indicates a resolved rectangle falls outside the grid.
	ErrRectOutOfBounds = errors.New("rectangle outside grid")
)
