package processor

import "errors"

// Sentinel kinds for processor errors.
var (
	ErrBadPayload    = errors.New("malformed payload")
	ErrUnknownAction = errors.New("unknown link action")
)
