// Package event is the in-process bus between services and their side
// effects. Services fire after a change commits, so a listener can never undo
// or fail the change; a panicking listener is logged and skipped.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/mogusu300/b2zi-merchant/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload interface{})

type bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

var std = &bus{handlers: map[string][]Handler{}}

// Listen subscribes handler to name. Handlers run in registration order.
func Listen(name string, handler Handler) {
	std.mu.Lock()
	std.handlers[name] = append(std.handlers[name], handler)
	std.mu.Unlock()
}

// Fire runs every listener of name on the caller's goroutine.
func Fire(ctx context.Context, name string, payload interface{}) {
	std.mu.RLock()
	hs := std.handlers[name]
	std.mu.RUnlock()

	for i, h := range hs {
		call(ctx, name, i, h, payload)
	}
}

func call(ctx context.Context, name string, i int, h Handler, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event listener panicked",
				"event", name, "listener", i, "panic", fmt.Sprint(rec))
		}
	}()
	h(ctx, payload)
}

// Flush drops every listener. Tests call it to isolate subscriptions.
func Flush() {
	std.mu.Lock()
	std.handlers = map[string][]Handler{}
	std.mu.Unlock()
}
