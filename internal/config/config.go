// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment overrides in Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BadgerDir is the durable store directory. Empty keeps the store
	// in memory, which suits tests and demos.
	BadgerDir string `koanf:"badger_dir"`

	// EventQueueSize bounds the event bus queue.
	EventQueueSize int `koanf:"queue_size"`

	// DedupeSize sets the size of the ingestion idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ViewerRole scopes the read cache: staff, admin or athlete.
	ViewerRole string `koanf:"viewer_role"`

	// AIMode selects the provider: "openai" or "off" (deterministic
	// fallbacks only).
	AIMode string `koanf:"ai_mode"`

	// OpenAIModel names the chat/vision model used when AIMode is openai.
	OpenAIModel string `koanf:"openai_model"`

	// OpenAIAPIKey authenticates against the provider. Usually supplied
	// via ATHLOS_OPENAI_API_KEY rather than a file.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// AITimeoutMS bounds each provider call.
	AITimeoutMS int `koanf:"ai_timeout_ms"`

	// MaxDocumentBytes caps one stored document before offloading kicks in.
	MaxDocumentBytes int `koanf:"max_document_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9090",
		BadgerDir:        "",
		EventQueueSize:   10_000,
		DedupeSize:       50_000,
		ViewerRole:       "staff",
		AIMode:           "off",
		OpenAIModel:      "gpt-4o-mini",
		AITimeoutMS:      30_000,
		MaxDocumentBytes: 1 << 20,
	}
}
