package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestBus(t *testing.T) {
	Convey("Given a bus with three listeners A, B, C", t, func() {
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		var calls []string
		record := func(name string) eventbus.Handler {
			return func(ctx context.Context, e eventbus.Event) {
				mu.Lock()
				calls = append(calls, name)
				mu.Unlock()
			}
		}

		unsubA := bus.Subscribe("PING", record("A"))
		unsubB := bus.Subscribe("PING", record("B"))
		unsubC := bus.Subscribe("PING", record("C"))
		defer unsubA()
		defer unsubC()

		Convey("When an event is published", func() {
			bus.Publish(context.Background(), "PING", nil)
			So(drain(bus), ShouldBeNil)

			Convey("Then listeners run in registration order", func() {
				mu.Lock()
				defer mu.Unlock()
				So(calls, ShouldResemble, []string{"A", "B", "C"})
			})
		})

		Convey("When B unsubscribes before a second publish", func() {
			bus.Publish(context.Background(), "PING", nil)
			So(drain(bus), ShouldBeNil)
			unsubB()
			bus.Publish(context.Background(), "PING", nil)
			So(drain(bus), ShouldBeNil)

			Convey("Then only A and C receive the second event", func() {
				mu.Lock()
				defer mu.Unlock()
				So(calls, ShouldResemble, []string{"A", "B", "C", "A", "C"})
			})
		})
	})

	Convey("Given a listener that panics", t, func() {
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		var calls []string
		bus.Subscribe("BOOM", func(ctx context.Context, e eventbus.Event) {
			panic("listener failure")
		})
		bus.Subscribe("BOOM", func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			calls = append(calls, "survivor")
			mu.Unlock()
		})

		Convey("When the event is published", func() {
			bus.Publish(context.Background(), "BOOM", nil)
			So(drain(bus), ShouldBeNil)

			Convey("Then delivery continues to the remaining listener", func() {
				mu.Lock()
				defer mu.Unlock()
				So(calls, ShouldResemble, []string{"survivor"})
			})
		})
	})

	Convey("Given a subscriber registered after a publish", t, func() {
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		count := 0
		bus.Publish(context.Background(), "LATE", nil)
		bus.Subscribe("LATE", func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			count++
			mu.Unlock()
		})
		So(drain(bus), ShouldBeNil)

		Convey("Then the missed event is not replayed", func() {
			mu.Lock()
			defer mu.Unlock()
			So(count, ShouldEqual, 0)
		})
	})

	Convey("Given event payload data", t, func() {
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		var got map[string]any
		bus.Subscribe("DATA", func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			got = e.Data
			mu.Unlock()
		})

		Convey("When published, the payload arrives intact", func() {
			bus.Publish(context.Background(), "DATA", map[string]any{"athleteId": "a1"})
			So(drain(bus), ShouldBeNil)
			mu.Lock()
			defer mu.Unlock()
			So(got["athleteId"], ShouldEqual, "a1")
		})
	})
}

func TestBusShutdown(t *testing.T) {
	Convey("Given a closed bus", t, func() {
		bus := eventbus.New()

		var mu sync.Mutex
		count := 0
		bus.Subscribe("PING", func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			count++
			mu.Unlock()
		})
		bus.Close()

		Convey("When events are published after Close", func() {
			So(func() {
				for i := 0; i < 100; i++ {
					bus.Publish(context.Background(), "PING", nil)
				}
			}, ShouldNotPanic)

			Convey("Then nothing is delivered and Drain returns", func() {
				So(drain(bus), ShouldBeNil)
				mu.Lock()
				defer mu.Unlock()
				So(count, ShouldEqual, 0)
			})
		})

		Convey("When Close is called a second time", func() {
			So(bus.Close, ShouldNotPanic)
		})
	})

	Convey("Given publishers racing Close", t, func() {
		bus := eventbus.New(eventbus.WithQueueSize(1))
		bus.Subscribe("PING", func(ctx context.Context, e eventbus.Event) {})

		Convey("Then no publish panics", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 200; j++ {
						bus.Publish(context.Background(), "PING", nil)
					}
				}()
			}
			bus.Close()
			So(func() { wg.Wait() }, ShouldNotPanic)
		})
	})
}

func TestBusHandlerPublish(t *testing.T) {
	Convey("Given a handler that publishes from inside its own delivery", t, func() {
		bus := eventbus.New(eventbus.WithQueueSize(1))
		defer bus.Close()

		var mu sync.Mutex
		var seen []string
		bus.Subscribe("FIRST", func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			seen = append(seen, "FIRST")
			mu.Unlock()
			bus.Publish(ctx, "SECOND", nil)
		})
		bus.Subscribe("SECOND", func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			seen = append(seen, "SECOND")
			mu.Unlock()
		})

		Convey("When the outer event is published on a size-1 queue", func() {
			bus.Publish(context.Background(), "FIRST", nil)
			So(drain(bus), ShouldBeNil)

			Convey("Then the chained event is delivered without deadlock", func() {
				mu.Lock()
				defer mu.Unlock()
				So(seen, ShouldResemble, []string{"FIRST", "SECOND"})
			})
		})
	})
}

func drain(bus *eventbus.Bus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return bus.Drain(ctx)
}
