// internal/sqltag/annotate.go
//
// Inline, block-scoped annotations.
//
// Context
// -------
// WithAnnotation wraps a unit of work so every query it runs carries an
// ad-hoc comment on top of the component comment:
//
//	err := sqltag.WithAnnotation(ctx, "backfill-2026-08", func(ctx context.Context) error {
//	    return repo.Rebuild(ctx)
//	})
//
// Nested calls concatenate in push order; the stack pops on every exit path,
// panics included, so a failed inner block can never leak its text into
// later queries on the same scope.  Inline comments are rendered fresh on
// every query and never cached.
package sqltag

import "context"

// WithAnnotation pushes text onto the scope's annotation stack, runs fn,
// and pops unconditionally.  Without a scope on ctx, one is attached first
// so annotations work in one-off scripts too.
func WithAnnotation(ctx context.Context, text string, fn func(context.Context) error) error {
	s := FromContext(ctx)
	if s == nil {
		ctx = WithScope(ctx)
		s = FromContext(ctx)
	}
	s.annotations = append(s.annotations, text)
	defer func() {
		s.annotations = s.annotations[:len(s.annotations)-1]
	}()
	return fn(ctx)
}

// InlineComment renders the current annotation stack as one comment, or ""
// when the stack is empty.  Annotations join by plain concatenation in push
// order, not the comma style the component comment uses.
func InlineComment(ctx context.Context) string {
	s := FromContext(ctx)
	if s == nil || len(s.annotations) == 0 {
		return ""
	}
	var joined string
	for _, a := range s.annotations {
		joined += a
	}
	if joined == "" {
		return ""
	}
	return "/*" + Escape(joined) + "*/"
}

// Annotations returns a copy of the current stack, inner-most last.  Used
// by tests and diagnostics.
func Annotations(ctx context.Context) []string {
	s := FromContext(ctx)
	if s == nil {
		return nil
	}
	return append([]string(nil), s.annotations...)
}
