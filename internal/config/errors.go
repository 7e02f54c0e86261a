package config

import (
	"errors"
)

// Sentinels wrapped by Load so callers can errors.Is on the failure kind.
var (
	// ErrInvalidConfig marks a configuration that parsed but failed validation.
	ErrInvalidConfig = errors.New("config validation failed")

	// ErrLoadConfig marks a configuration source that could not be read or parsed.
	ErrLoadConfig = errors.New("config load failed")
)
