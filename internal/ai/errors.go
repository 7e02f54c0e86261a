package ai

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrUnavailable = errors.New("ai provider unavailable")
	ErrEmptyResult = errors.New("ai provider returned no content")
)
