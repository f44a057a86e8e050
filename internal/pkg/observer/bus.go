// Package observer implements §4.5's event bus and the two concrete
// observers (connection, interval) built on it.
package observer

import (
	"context"
	"sync"

	"k8s.io/klog/v2"
)

// Observer[T] is a typed event bus: Register(fn) records handlers, Trigger
// dispatches to all of them. Go's generics give compile-time argument-type
// safety the Python original could only provide via a runtime
// inspect.getfullargspec warning — see DESIGN.md's "generic bus note".
type Observer[T any] struct {
	mu       sync.RWMutex
	handlers []func(context.Context, T)
}

// Register adds a handler. Handlers run synchronously, in registration
// order, the same as the Python original's handler list.
func (o *Observer[T]) Register(fn func(context.Context, T)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, fn)
}

// Trigger propagates event to every registered handler.
func (o *Observer[T]) Trigger(ctx context.Context, event T) {
	o.mu.RLock()
	handlers := make([]func(context.Context, T), len(o.handlers))
	copy(handlers, o.handlers)
	o.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// StartupObserver is the zero-argument case (Python's EventObserver() with
// no required_types).
type StartupObserver struct {
	mu       sync.RWMutex
	handlers []func(context.Context)
}

func (o *StartupObserver) Register(fn func(context.Context)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, fn)
}

func (o *StartupObserver) Trigger(ctx context.Context) {
	o.mu.RLock()
	handlers := make([]func(context.Context), len(o.handlers))
	copy(handlers, o.handlers)
	o.mu.RUnlock()

	for _, h := range handlers {
		h(ctx)
	}
}

// AnyObserver is the one place that still needs a runtime registry of
// heterogeneous handlers — the metrics/ambient hookup that wants to observe
// every event kind through one registration call. It mirrors the Python
// registry's "warn, don't crash" behavior on a mismatched handler, logging
// through klog instead of Python's warnings module.
type AnyObserver struct {
	mu       sync.RWMutex
	handlers []func(context.Context, ...any)
}

func (o *AnyObserver) Register(fn func(context.Context, ...any)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, fn)
}

func (o *AnyObserver) Trigger(ctx context.Context, args ...any) {
	o.mu.RLock()
	handlers := make([]func(context.Context, ...any), len(o.handlers))
	copy(handlers, o.handlers)
	o.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					klog.Warningf("observer handler panicked: %v", r)
				}
			}()
			h(ctx, args...)
		}()
	}
}
