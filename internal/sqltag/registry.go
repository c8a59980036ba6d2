// internal/sqltag/registry.go
//
// Comment-component registry.
//
// Each component is a named Renderer.  Built-ins register themselves from
// builtin.go; applications may add their own before building the Composer.
// Membership is validated once, at Composer construction, so a typo in the
// configured component list fails startup instead of silently rendering
// nothing on every query.
package sqltag

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Renderer produces one comment fragment from the request context.  The
// second return value reports presence; absent components are skipped, not
// rendered empty.
type Renderer func(ctx context.Context) (string, bool)

var (
	regMu    sync.RWMutex
	registry = map[string]Renderer{}
)

// Register adds a named component.  Registering an empty name or a duplicate
// is a programming error and is rejected so init-time wiring surfaces it.
func Register(name string, fn Renderer) error {
	if name == "" || fn == nil {
		return fmt.Errorf("sqltag: component name and renderer are required")
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[name]; dup {
		return fmt.Errorf("sqltag: component %q already registered", name)
	}
	registry[name] = fn
	return nil
}

// mustRegister is the init()-time form used by the built-ins.
func mustRegister(name string, fn Renderer) {
	if err := Register(name, fn); err != nil {
		panic(err)
	}
}

// lookup returns the renderer for name, or nil.
func lookup(name string) Renderer {
	regMu.RLock()
	defer regMu.RUnlock()
	return registry[name]
}

// render invokes one renderer, treating a panic as "component unavailable".
// A tagging feature must never take a query down with it.
func render(name string, ctx context.Context) (val string, ok bool) {
	fn := lookup(name)
	if fn == nil {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			zap.S().Debugw("sqltag component panicked", "component", name, "err", r)
			val, ok = "", false
		}
	}()
	return fn(ctx)
}
