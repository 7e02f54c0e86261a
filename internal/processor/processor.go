// Package processor implements the per-datatype transforms the orchestrator
// dispatches ingested payloads through. Each processor turns one typed
// payload plus the current athlete aggregate into an updated aggregate and an
// event to publish.
//
// The table is closed and built at startup; construction fails loudly if any
// declared data type is left without a handler, so adding a type is checked
// the moment the service boots rather than at first dispatch.
package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athlos-ai/athlos/internal/adapters/notify"
	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/pkg/logger"
)

// Result is what a processor hands back to the orchestrator.
type Result struct {
	Athlete   *model.Athlete
	EventType model.DataType
	EventData map[string]any

	// SkipPersistence is set when a server-side collaborator already wrote
	// the durable store and a second write would clobber it.
	SkipPersistence bool
}

// Processor transforms one athlete aggregate given one typed payload.
type Processor interface {
	Type() model.DataType
	Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error)
}

// Registry is the fixed tag-to-processor table.
type Registry struct {
	procs map[model.DataType]Processor
	log   logger.Logger
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLogger sets a custom logger for the registry and its processors.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry builds the complete processor table. notifier receives the
// alerts raised by the recovery-metrics processor.
func NewRegistry(notifier notify.Notifier, opts ...Option) (*Registry, error) {
	r := &Registry{procs: make(map[model.DataType]Processor)}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("processor")
	}

	for _, p := range []Processor{
		&recoveryMetrics{notifier: notifier},
		&injuryUpdate{resolved: false},
		&injuryUpdate{resolved: true},
		&therapySession{},
		&statUpdate{},
		&profileUpdate{},
		&aiFeedback{},
		&linkRequest{},
	} {
		r.procs[p.Type()] = p
	}

	for _, t := range model.DataTypes() {
		if _, ok := r.procs[t]; !ok {
			return nil, fmt.Errorf("processor table incomplete: no handler for %s", t)
		}
	}
	return r, nil
}

// Lookup returns the processor for a tag, or false for an unregistered tag.
// The caller treats the miss as a warn-and-skip no-op, not an error.
func (r *Registry) Lookup(t model.DataType) (Processor, bool) {
	p, ok := r.procs[t]
	return p, ok
}

func decode(payload json.RawMessage, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
