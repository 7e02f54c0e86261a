// Package eventbus provides the in-process publish/subscribe bus used for
// reactive side effects.
//
// Publish enqueues a delivery; a single dispatcher goroutine drains the queue
// and invokes, in registration order, the listeners that were subscribed at
// publish time. A panicking listener is isolated and never starves the rest.
// There is no retry, no persistence, and no replay for late subscribers.
package eventbus

import (
	"context"
	"sync"

	"github.com/athlos-ai/athlos/pkg/logger"
	"github.com/athlos-ai/athlos/pkg/metrics"
)

const defaultQueueSize = 1024

// Event is a {name, payload} pair with no persisted identity.
type Event struct {
	Name string
	Data map[string]any
}

// Handler processes one delivered event.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	handler Handler
}

type delivery struct {
	event    Event
	handlers []Handler // snapshot taken at publish time
}

// Bus dispatches events to subscribers through a single ordered queue.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID uint64
	closed bool

	queue   chan delivery
	pending sync.WaitGroup
	stop    chan struct{}
	done    chan struct{}

	queueSize int
	log       logger.Logger
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithQueueSize bounds the pending-delivery queue.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithLogger sets a custom logger for the bus.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a Bus and starts its dispatcher.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:      make(map[string][]subscription),
		queueSize: defaultQueueSize,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Named("eventbus")
	}
	b.queue = make(chan delivery, b.queueSize)
	go b.dispatch()
	return b
}

// Subscribe registers a handler for the named event and returns its
// unsubscribe function. Handlers registered earlier are delivered to first.
func (b *Bus) Subscribe(name string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[name]
		for i, s := range list {
			if s.id == id {
				b.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// dispatchCtxKey marks the context handed to handlers, so a publish issued
// from inside a delivery can be told apart from an external one.
type dispatchCtxKey struct{}

// Publish enqueues an event for the listeners registered at this moment.
// It never blocks on listener execution; it blocks only if the queue is full.
// Publishing to a closed bus is a no-op. A handler may publish from inside
// its own delivery, but such publishes are dropped with a warning when the
// queue is full: the dispatcher is the only drainer, so blocking there would
// deadlock it.
func (b *Bus) Publish(ctx context.Context, name string, data map[string]any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	list := b.subs[name]
	handlers := make([]Handler, len(list))
	for i, s := range list {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	metrics.RecordBusPublish(name)
	if len(handlers) == 0 {
		return
	}

	d := delivery{event: Event{Name: name, Data: data}, handlers: handlers}
	b.pending.Add(1)
	if ctx.Value(dispatchCtxKey{}) != nil {
		select {
		case b.queue <- d:
			metrics.UpdateBusQueueDepth(len(b.queue))
		default:
			b.pending.Done()
			b.log.Warn(ctx, "queue full, dropping handler publish",
				logger.String("event", name))
		}
		return
	}
	select {
	case b.queue <- d:
		metrics.UpdateBusQueueDepth(len(b.queue))
	case <-ctx.Done():
		b.pending.Done()
	case <-b.stop:
		b.pending.Done()
	}
}

// Drain blocks until every delivery enqueued so far has been handled, or ctx
// expires. It exists so tests and shutdown get an explicit completion signal.
func (b *Bus) Drain(ctx context.Context) error {
	waited := make(chan struct{})
	go func() {
		b.pending.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting publishes and terminates the dispatcher after the
// queue empties. The queue channel itself is never closed, so a publish
// racing Close cannot panic; deliveries that land during the race are swept
// here after the dispatcher exits.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stop)
	<-b.done

	ctx := context.WithValue(context.Background(), dispatchCtxKey{}, true)
	for {
		select {
		case d := <-b.queue:
			b.deliver(ctx, d)
		default:
			return
		}
	}
}

func (b *Bus) dispatch() {
	defer close(b.done)
	ctx := context.WithValue(context.Background(), dispatchCtxKey{}, true)
	for {
		select {
		case d := <-b.queue:
			b.deliver(ctx, d)
		case <-b.stop:
			for {
				select {
				case d := <-b.queue:
					b.deliver(ctx, d)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, d delivery) {
	for _, h := range d.handlers {
		b.invoke(ctx, d.event, h)
	}
	metrics.UpdateBusQueueDepth(len(b.queue))
	b.pending.Done()
}

// invoke runs one handler, recovering panics so one listener cannot abort
// delivery to the rest.
func (b *Bus) invoke(ctx context.Context, e Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordBusListenerPanic()
			b.log.Error(context.Background(), "listener panicked",
				logger.String("event", e.Name),
				logger.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}
