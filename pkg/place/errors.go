package place

import "errors"

// Common errors used by repository/use cases. Messages are surfaced to
// clients verbatim by the HTTP layer.
var (
	ErrNotFound     = errors.New("Could not find a place for the provided id.")
	ErrUserNotFound = errors.New("Could not find user")
	ErrForbidden    = errors.New("You are not allowed to modify this place")
	ErrInvalidInput = errors.New("Invalid inputs passed. Please check your data")
)
