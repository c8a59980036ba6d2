// internal/sqltag/scope.go
//
// Per-request / per-job tag scope.
//
// Context
// -------
// A Scope is the mutable key-value store that comment components read.  One
// Scope is created per logical unit of work (an HTTP request or a background
// job run), attached to that unit's context.Context under an unexported key,
// and discarded when the unit ends.  Handlers and the job runner merge keys
// such as "controller", "action", or "job" into it; the Composer reads them
// back when it renders the SQL comment.
//
// The Scope also carries the memoized comment (see composer.go) and the
// inline-annotation stack (see annotate.go) so that all per-unit state lives
// in one place and dies together.
//
// Notes
// -----
// • A Scope is owned by one request/job goroutine tree and is never shared
//   across units, so there is no locking.  Do not stash a Scope in a
//   package-level variable.
// • Oxford commas, two spaces after periods.
package sqltag

import "context"

// Scope holds the tag map, the cached comment, and the annotation stack for
// one unit of work.
type Scope struct {
	tags        map[string]string
	cached      string // memoized component comment
	cacheValid  bool
	annotations []string // inline annotation stack, push order
	skip        bool     // suppress tagging for queries under this scope
}

type scopeKey struct{} // unexported, collision-proof

// WithScope attaches a fresh, empty Scope to ctx and returns the derived
// context.  Middleware and the job runner call this once per unit of work.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &Scope{tags: map[string]string{}})
}

// FromContext returns the Scope attached by WithScope, or nil when the
// caller sits outside any tagged unit of work.
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Update merges kv into the scope's tag map and invalidates the memoized
// comment.  Unknown keys are accepted as-is; components simply ignore keys
// they do not read.  A nil scope is a no-op so callers never need to guard.
func Update(ctx context.Context, kv map[string]string) {
	s := FromContext(ctx)
	if s == nil {
		return
	}
	for k, v := range kv {
		s.tags[k] = v
	}
	s.cached = ""
	s.cacheValid = false
}

// Read returns the current value for key and whether it is present.
func Read(ctx context.Context, key string) (string, bool) {
	s := FromContext(ctx)
	if s == nil {
		return "", false
	}
	v, ok := s.tags[key]
	return v, ok
}

// Clear wipes all tags and the memoized comment but keeps the Scope itself,
// so a long-lived context (a worker loop) can be reused across runs.
func Clear(ctx context.Context) {
	s := FromContext(ctx)
	if s == nil {
		return
	}
	s.tags = map[string]string{}
	s.cached = ""
	s.cacheValid = false
}

// Skip marks the scope so the driver leaves queries under it untouched.
// The marker sticks for the remainder of the scope, not just one call, so
// it suits units of work that should never be tagged (health probes, bulk
// exports).  When ctx has no scope yet, one is attached just to carry the
// marker.
//
//	func healthz(w http.ResponseWriter, r *http.Request) {
//	    ctx := sqltag.Skip(r.Context())
//	    if err := db.PingContext(ctx); err != nil { … }
//	}
func Skip(ctx context.Context) context.Context {
	if s := FromContext(ctx); s != nil {
		s.skip = true
		return ctx
	}
	ctx = WithScope(ctx)
	FromContext(ctx).skip = true
	return ctx
}

// skipped reports whether tagging is suppressed for ctx.
func skipped(ctx context.Context) bool {
	s := FromContext(ctx)
	return s != nil && s.skip
}
