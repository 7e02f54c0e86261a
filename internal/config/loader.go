package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ATHLOS_CONFIG is set
//  3. env (prefix ATHLOS_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ATHLOS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ATHLOS_ADDR, ATHLOS_QUEUE_SIZE, ...
	// Map env keys like ATHLOS_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider("ATHLOS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "athlos_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.ViewerRole {
	case "staff", "admin", "athlete":
	default:
		return fmt.Errorf("%w: viewer_role must be staff, admin or athlete", ErrInvalidConfig)
	}
	switch c.AIMode {
	case "off", "openai":
	default:
		return fmt.Errorf("%w: ai_mode must be off or openai", ErrInvalidConfig)
	}
	if c.AIMode == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: openai_api_key required when ai_mode is openai", ErrInvalidConfig)
	}
	if c.EventQueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
